package validate

import (
	"strings"
	"testing"

	"LSProject/module/feed/model"
	"LSProject/tools/errs"
)

func validPost() model.CreatePostValues {
	return model.CreatePostValues{
		UserName:        "Ada",
		ScientificField: "Computability",
		Content:         "On computable numbers",
		Category:        model.CategoryFormal,
	}
}

func TestCreatePostAcceptsValidValues(t *testing.T) {
	if err := CreatePost(validPost()); err != nil {
		t.Fatalf("valid post rejected: %v", err)
	}
	v := validPost()
	v.MediaURL = "https://cdn.example.org/fig1.png"
	v.Link = "https://doi.org/10.1000/xyz"
	if err := CreatePost(v); err != nil {
		t.Fatalf("post with urls rejected: %v", err)
	}
}

func TestCreatePostBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.CreatePostValues)
	}{
		{"empty name", func(v *model.CreatePostValues) { v.UserName = "  " }},
		{"name too long", func(v *model.CreatePostValues) { v.UserName = strings.Repeat("a", 81) }},
		{"field too long", func(v *model.CreatePostValues) { v.ScientificField = strings.Repeat("f", 121) }},
		{"empty content", func(v *model.CreatePostValues) { v.Content = "" }},
		{"content too long", func(v *model.CreatePostValues) { v.Content = strings.Repeat("c", 5001) }},
		{"bad category", func(v *model.CreatePostValues) { v.Category = "astrology" }},
		{"empty category", func(v *model.CreatePostValues) { v.Category = "" }},
		{"bad media url", func(v *model.CreatePostValues) { v.MediaURL = "not a url" }},
		{"bad link", func(v *model.CreatePostValues) { v.Link = "://broken" }},
	}
	for _, tc := range cases {
		v := validPost()
		tc.mutate(&v)
		if err := CreatePost(v); !errs.ErrValidationFailed.Is(err) {
			t.Errorf("%s: err = %v, want ValidationFailed", tc.name, err)
		}
	}
}

func TestCreateCommentBounds(t *testing.T) {
	ok := model.CreateCommentValues{UserName: "Ada", Content: "nice result"}
	if err := CreateComment(ok); err != nil {
		t.Fatalf("valid comment rejected: %v", err)
	}
	if err := CreateComment(model.CreateCommentValues{UserName: "Ada", Content: strings.Repeat("c", 2001)}); !errs.ErrValidationFailed.Is(err) {
		t.Fatalf("oversized comment must fail, got %v", err)
	}
	if err := CreateComment(model.CreateCommentValues{UserName: "", Content: "x"}); !errs.ErrValidationFailed.Is(err) {
		t.Fatalf("empty name must fail, got %v", err)
	}
}

func TestCreateReportRequiresKnownType(t *testing.T) {
	if err := CreateReport(model.CreateReportValues{Type: "Spam/Scam", Reason: "bot ring"}); err != nil {
		t.Fatalf("valid report rejected: %v", err)
	}
	if err := CreateReport(model.CreateReportValues{Type: "", Reason: "x"}); !errs.ErrValidationFailed.Is(err) {
		t.Fatalf("empty type must fail, got %v", err)
	}
	if err := CreateReport(model.CreateReportValues{Type: "Rudeness", Reason: "x"}); !errs.ErrValidationFailed.Is(err) {
		t.Fatalf("unknown type must fail, got %v", err)
	}
	if err := CreateReport(model.CreateReportValues{Type: "Other", Reason: strings.Repeat("r", 2001)}); !errs.ErrValidationFailed.Is(err) {
		t.Fatalf("oversized reason must fail, got %v", err)
	}
}

func TestCategoryFilter(t *testing.T) {
	if err := Category(""); err != nil {
		t.Fatalf("empty category must pass: %v", err)
	}
	if err := Category(model.CategoryNatural); err != nil {
		t.Fatalf("known category must pass: %v", err)
	}
	if err := Category("astrology"); !errs.ErrValidationFailed.Is(err) {
		t.Fatalf("unknown category must fail, got %v", err)
	}
}
