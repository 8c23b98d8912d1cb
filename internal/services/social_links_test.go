package services

import "testing"

func ptr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestTransformTwitterURL(t *testing.T) {
	tests := []struct {
		in   *string
		want string
	}{
		{ptr("@foo"), "https://x.com/foo"},
		{ptr("foo"), "https://x.com/foo"},
		{ptr("%40foo"), "https://x.com/foo"},
		{ptr("https://x.com/foo"), "https://x.com/foo"},
		{ptr("twitter.com/foo/"), "https://x.com/foo"},
		{ptr("https://www.Twitter.com/#!/foo"), "https://x.com/foo"},
		{ptr("http://twitter.com/@foo?lang=en"), "https://x.com/foo"},
		{ptr("  f3_nation  "), "https://x.com/f3_nation"},
		{ptr("not a handle!!"), "<nil>"},
		{ptr("https://facebook.com/foo"), "<nil>"},
		{ptr(""), "<nil>"},
		{nil, "<nil>"},
	}

	for _, tt := range tests {
		got := deref(TransformTwitterURL(tt.in))
		if got != tt.want {
			t.Errorf("TransformTwitterURL(%q): expected %s, got %s", deref(tt.in), tt.want, got)
		}
	}
}

func TestTransformFacebookURL(t *testing.T) {
	tests := []struct {
		in   *string
		want string
	}{
		{ptr("https://www.facebook.com/F3Nashville"), "https://facebook.com/F3Nashville"},
		{ptr("facebook.com/f3.boone/"), "https://facebook.com/f3.boone"},
		{ptr("https://facebook.com/groups/f3raleigh"), "https://facebook.com/groups/f3raleigh"},
		{ptr("https://www.facebook.com/groups/123456/?ref=share"), "https://facebook.com/groups/123456"},
		{ptr("https://www.facebook.com/profile.php?id=1000"), "https://www.facebook.com/profile.php?id=1000"},
		{ptr("https://facebook.com/F3 Nashville"), "<nil>"},
		{ptr("F3Nashville"), "<nil>"},
		{nil, "<nil>"},
	}

	for _, tt := range tests {
		got := deref(TransformFacebookURL(tt.in))
		if got != tt.want {
			t.Errorf("TransformFacebookURL(%q): expected %s, got %s", deref(tt.in), tt.want, got)
		}
	}
}

func TestTransformInstagramURL(t *testing.T) {
	tests := []struct {
		in   *string
		want string
	}{
		{ptr("https://www.instagram.com/f3nashville/"), "https://instagram.com/f3nashville"},
		{ptr("instagram.com/f3.boone"), "https://instagram.com/f3.boone"},
		{ptr("@f3_raleigh"), "https://instagram.com/f3_raleigh"},
		{ptr("f3raleigh"), "https://instagram.com/f3raleigh"},
		{ptr("f3 raleigh"), "<nil>"},
		{nil, "<nil>"},
	}

	for _, tt := range tests {
		got := deref(TransformInstagramURL(tt.in))
		if got != tt.want {
			t.Errorf("TransformInstagramURL(%q): expected %s, got %s", deref(tt.in), tt.want, got)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := deref(NormalizeEmail(ptr("  nan@f3nation.com "))); got != "nan@f3nation.com" {
		t.Errorf("Expected trimmed email, got %s", got)
	}
	if got := NormalizeEmail(ptr("not-an-email")); got != nil {
		t.Errorf("Expected nil, got %s", *got)
	}
	if got := NormalizeEmail(nil); got != nil {
		t.Errorf("Expected nil, got %s", *got)
	}
}

func TestKebabCase(t *testing.T) {
	tests := map[string]string{
		"F3 Nashville":      "f-3-nashville",
		"F3Nashville":       "f-3-nashville",
		"  Lake  Norman  ":  "lake-norman",
		"St. Louis (Metro)": "st-louis-metro",
		"high_point-region": "high-point-region",
		"Café Región":       "cafe-region",
		"Søndre Nordstrand": "sondre-nordstrand",
		"O'Fallon":          "o-fallon",
		"Coeur d’Alene":     "coeur-d-alene",
		"XMLHttp Region":    "xml-http-region",
		"1st Region":        "1st-region",
		"11th Street":       "11-th-street",
		"":                  "",
	}

	for in, want := range tests {
		if got := KebabCase(in); got != want {
			t.Errorf("KebabCase(%q): expected %q, got %q", in, want, got)
		}
	}
}
