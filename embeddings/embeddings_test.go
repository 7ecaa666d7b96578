package embeddings

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestProfileText(t *testing.T) {
	tests := []struct {
		name   string
		dn     string
		bio    string
		skills []string
		want   string
	}{
		{
			name:   "full profile",
			dn:     "DataBot",
			bio:    "Analyzes datasets",
			skills: []string{"Python", "ML"},
			want:   "DataBot. Analyzes datasets. Skills: python, ml",
		},
		{
			name: "name only",
			dn:   "DataBot",
			want: "DataBot",
		},
		{
			name:   "skills only",
			skills: []string{"go"},
			want:   "Skills: go",
		},
		{
			name:   "blank skills dropped",
			dn:     "Bot",
			skills: []string{"  ", ""},
			want:   "Bot",
		},
		{
			name: "empty profile",
			want: "",
		},
		{
			name: "whitespace trimmed",
			dn:   "  Bot  ",
			bio:  " helps out ",
			want: "Bot. helps out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProfileText(tt.dn, tt.bio, tt.skills)
			if got != tt.want {
				t.Errorf("ProfileText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProfileTextDeterministic(t *testing.T) {
	a := ProfileText("Bot", "bio", []string{"go", "nats"})
	b := ProfileText("Bot", "bio", []string{"go", "nats"})
	if a != b {
		t.Errorf("same profile must yield same text: %q vs %q", a, b)
	}
}

func TestLocalProviderDimension(t *testing.T) {
	p := NewLocalProvider(64)
	if p.Dimension() != 64 {
		t.Errorf("expected dimension 64, got %d", p.Dimension())
	}

	vecs, err := p.Embed(context.Background(), []string{"hello world"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != 64 {
		t.Fatalf("expected one 64-wide vector, got %d x %d", len(vecs), len(vecs[0]))
	}
}

func TestLocalProviderDeterministic(t *testing.T) {
	p := NewLocalProvider(32)

	a, err := p.Embed(context.Background(), []string{"python machine learning"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	b, err := p.Embed(context.Background(), []string{"python machine learning"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same text must embed identically")
	}
}

func TestLocalProviderUnitNorm(t *testing.T) {
	p := NewLocalProvider(32)

	vecs, err := p.Embed(context.Background(), []string{"some text here", ""})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	for i, vec := range vecs {
		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		if math.Abs(norm-1.0) > 1e-5 {
			t.Errorf("vector %d not unit length: %v", i, norm)
		}
	}
}

func TestLocalProviderSimilarTextsCloser(t *testing.T) {
	p := NewLocalProvider(128)
	ctx := context.Background()

	vecs, err := p.Embed(ctx, []string{
		"python machine learning pipelines",
		"python machine learning models",
		"baroque harpsichord composition",
	})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	dot := func(a, b []float32) float64 {
		var s float64
		for i := range a {
			s += float64(a[i]) * float64(b[i])
		}
		return s
	}

	if dot(vecs[0], vecs[1]) <= dot(vecs[0], vecs[2]) {
		t.Error("overlapping texts should be closer than unrelated ones")
	}
}

func TestLocalProviderEmptyInput(t *testing.T) {
	p := NewLocalProvider(16)
	if _, err := p.Embed(context.Background(), nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestLocalProviderCancelledContext(t *testing.T) {
	p := NewLocalProvider(16)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Embed(ctx, []string{"text"}); err == nil {
		t.Error("expected context error")
	}
}

func TestNewOpenAIProviderValidation(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{}); err == nil {
		t.Error("expected error for missing api key")
	}

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewOpenAIProvider failed: %v", err)
	}
	if p.Dimension() != 384 {
		t.Errorf("expected default dimension 384, got %d", p.Dimension())
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("rate limit exceeded"), true},
		{errors.New("status 429"), true},
		{errors.New("502 bad gateway"), true},
		{errors.New("server overloaded"), true},
		{errors.New("invalid api key"), false},
		{errors.New("model not found"), false},
	}

	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.want {
			t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
