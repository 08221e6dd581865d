package listing

import (
	"strings"
	"testing"
)

func TestNormalize_EmptyTitle(t *testing.T) {
	n := Normalize("", "", "")
	if n.Title != "Untitled" {
		t.Errorf("expected Untitled, got %q", n.Title)
	}
}

func TestNormalize_TitleDedupe(t *testing.T) {
	n := Normalize("Soft Soft Area Rug", "", "")
	if n.Title != "Soft Area Rug" {
		t.Errorf("expected deduped title, got %q", n.Title)
	}
}

func TestNormalize_CmDimensions(t *testing.T) {
	n := Normalize("Rug", "Size is 60 cm x 90 cm, fits entryways.", "")
	if n.Dimensions.WidthCm != "60" || n.Dimensions.LengthCm != "90" {
		t.Fatalf("unexpected dimensions: %+v", n.Dimensions)
	}
	if !hasBullet(n.Features, "Size: 60 × 90 cm") {
		t.Errorf("expected size bullet, got %v", n.Features)
	}
	if !strings.Contains(n.Description, "60 × 90 cm") {
		t.Errorf("expected canonical dimensions in description: %q", n.Description)
	}
}

func TestNormalize_Thickness(t *testing.T) {
	n := Normalize("Rug", "Low pile, thickness: 0.5 inch, easy under doors.", "")
	if n.Dimensions.ThicknessIn != "0.5" {
		t.Fatalf("unexpected thickness: %+v", n.Dimensions)
	}
	if !hasBullet(n.Features, `Thickness: 0.5" (low profile)`) {
		t.Errorf("expected thickness bullet, got %v", n.Features)
	}
}

func TestNormalize_FeatureBullets(t *testing.T) {
	desc := "Made of polyester with anti-slip backing. Machine washable and safe on hardwood floors."
	n := Normalize("Rug", desc, "")

	for _, want := range []string{
		"Backing: Anti-slip rubber",
		"Surface: Non-woven polyester",
		"Care: Machine washable",
		"Floor Safety: Suitable for hardwood",
	} {
		if !hasBullet(n.Features, want) {
			t.Errorf("missing bullet %q in %v", want, n.Features)
		}
	}
	// Bullets get appended to the description as well.
	if !strings.Contains(n.Description, "• Care: Machine washable.") {
		t.Errorf("expected bullets in description: %q", n.Description)
	}
}

func TestNormalize_StripsBoilerplate(t *testing.T) {
	n := Normalize("Rug", "A great rug. Contact our customer service anytime.", "")
	if strings.Contains(strings.ToLower(n.Description), "customer service") {
		t.Errorf("boilerplate survived: %q", n.Description)
	}
}

func TestNormalize_DelimiterCleanup(t *testing.T) {
	n := Normalize("Rug", "Soft touch | pet friendly | durable weave", "")
	if strings.Contains(n.Description, "|") {
		t.Errorf("pipe delimiter survived: %q", n.Description)
	}
	if !strings.Contains(n.Description, "Soft touch, pet friendly, durable weave") {
		t.Errorf("unexpected description: %q", n.Description)
	}
}

func TestNormalize_WordDedupe(t *testing.T) {
	n := Normalize("Rug", "Soft soft texture for bedrooms.", "")
	if strings.Contains(strings.ToLower(n.Description), "soft soft") {
		t.Errorf("repeated word survived: %q", n.Description)
	}
}

func TestNormalize_Creative(t *testing.T) {
	n := Normalize("Rug", "", "a cozy companion for chilly mornings --")
	if n.Creative != "A cozy companion for chilly mornings" {
		t.Errorf("unexpected creative text: %q", n.Creative)
	}
}

func TestNormalize_SmartPunctuation(t *testing.T) {
	n := Normalize("Rug", "Sized 23.6” wide, “luxurious” feel", "")
	if strings.ContainsAny(n.Description, "“”") {
		t.Errorf("smart quotes survived: %q", n.Description)
	}
}

func TestSentenceize(t *testing.T) {
	got := sentenceize("first part. Second part! Third")
	want := "First part. Second part! Third"
	if got != want {
		t.Errorf("sentenceize = %q, want %q", got, want)
	}

	// Lowercase after a period is an abbreviation, not a sentence boundary.
	if got := sentenceize("approx. one inch"); got != "Approx. one inch" {
		t.Errorf("sentenceize = %q", got)
	}
}

func hasBullet(features []string, want string) bool {
	for _, f := range features {
		if f == want {
			return true
		}
	}
	return false
}
