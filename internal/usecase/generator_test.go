package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailidpwd/similarlinks/internal/domain"
)

// fakeGenClient scripts one outcome per call and records which credential
// each call used.
type fakeGenClient struct {
	completions []*domain.Completion
	errs        []error
	credentials int
	calls       []int
	prompts     []string
}

func (f *fakeGenClient) Generate(ctx context.Context, prompt string, credential int) (*domain.Completion, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, credential)
	f.prompts = append(f.prompts, prompt)
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx < len(f.completions) {
		return f.completions[idx], nil
	}
	return nil, fmt.Errorf("unexpected call %d", idx)
}

func (f *fakeGenClient) CredentialCount() int { return f.credentials }
func (f *fakeGenClient) Model() string        { return "fake-model" }

// newTestGenerator swaps the sleep function for a recorder so backoff can be
// asserted without real delays.
func newTestGenerator(client domain.GenerationClient, sleeps *[]time.Duration) *NameGenerator {
	g := NewNameGenerator(client, GeneratorConfig{BaseDelay: 2 * time.Second})
	g.sleep = func(ctx context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	return g
}

func completionWith(text string) *domain.Completion {
	return &domain.Completion{StopReason: domain.StopNormal, Text: text}
}

func TestGenerate_Success(t *testing.T) {
	client := &fakeGenClient{
		credentials: 1,
		completions: []*domain.Completion{
			completionWith(`{"product_names":["Dell XPS 13","HP Spectre x360","Lenovo Yoga 7i","ASUS ZenBook 14","Acer Swift 3"]}`),
		},
	}
	var sleeps []time.Duration
	g := newTestGenerator(client, &sleeps)

	set, err := g.Generate(context.Background(), &domain.RecommendationSeed{Title: "XYZ Laptop 8GB RAM"})
	require.NoError(t, err)

	assert.Equal(t, "laptop", set.Category)
	assert.Len(t, set.CandidateNames, 5)
	assert.Equal(t, "Dell XPS 13", set.CandidateNames[0])
	assert.Empty(t, sleeps)
}

func TestGenerate_BackfillInvariant(t *testing.T) {
	for _, produced := range [][]string{nil, {"Only One"}, {"One", "Two"}} {
		t.Run(fmt.Sprintf("%d names produced", len(produced)), func(t *testing.T) {
			text := `{"product_names":[`
			for i, name := range produced {
				if i > 0 {
					text += ","
				}
				text += fmt.Sprintf("%q", name)
			}
			text += `]}`

			client := &fakeGenClient{credentials: 1, completions: []*domain.Completion{completionWith(text)}}
			var sleeps []time.Duration
			g := newTestGenerator(client, &sleeps)

			set, err := g.Generate(context.Background(), &domain.RecommendationSeed{Title: "Logitech K380 Keyboard"})
			require.NoError(t, err)

			require.GreaterOrEqual(t, len(set.CandidateNames), 3)
			for i := len(produced); i < len(set.CandidateNames); i++ {
				assert.Equal(t, fmt.Sprintf("Alternative keyboard %d", i+1), set.CandidateNames[i])
			}
		})
	}
}

func TestGenerate_TruncatesToSixNames(t *testing.T) {
	client := &fakeGenClient{
		credentials: 1,
		completions: []*domain.Completion{
			completionWith(`{"product_names":["A1","A2","A3","A4","A5","A6","A7","A8"]}`),
		},
	}
	var sleeps []time.Duration
	g := newTestGenerator(client, &sleeps)

	set, err := g.Generate(context.Background(), &domain.RecommendationSeed{Title: "JBL Speaker"})
	require.NoError(t, err)
	assert.Len(t, set.CandidateNames, 6)
}

func TestGenerate_CredentialRotationOnQuota(t *testing.T) {
	client := &fakeGenClient{
		credentials: 2,
		errs:        []error{domain.ErrRateLimited, nil},
		completions: []*domain.Completion{
			nil,
			completionWith(`{"product_names":["A","B","C"]}`),
		},
	}
	var sleeps []time.Duration
	g := newTestGenerator(client, &sleeps)

	_, err := g.Generate(context.Background(), &domain.RecommendationSeed{Title: "Sony WH-1000XM5 Headphones"})
	require.NoError(t, err)

	// Credential 0 first, then credential 1, with no backoff in between.
	assert.Equal(t, []int{0, 1}, client.calls)
	assert.Empty(t, sleeps)
}

func TestGenerate_QuotaExhaustsAllCredentials(t *testing.T) {
	client := &fakeGenClient{
		credentials: 1,
		errs:        []error{domain.ErrRateLimited},
	}
	var sleeps []time.Duration
	g := newTestGenerator(client, &sleeps)

	_, err := g.Generate(context.Background(), &domain.RecommendationSeed{Title: "Sony Headphones"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Len(t, client.calls, 1)
}

func TestGenerate_OverloadBacksOffExponentially(t *testing.T) {
	client := &fakeGenClient{
		credentials: 1,
		errs:        []error{domain.ErrOverloaded, domain.ErrOverloaded, nil},
		completions: []*domain.Completion{
			nil,
			nil,
			completionWith(`{"product_names":["A","B","C"]}`),
		},
	}
	var sleeps []time.Duration
	g := newTestGenerator(client, &sleeps)

	_, err := g.Generate(context.Background(), &domain.RecommendationSeed{Title: "Dell Monitor"})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeps)
}

func TestGenerate_OverloadExhaustsAttempts(t *testing.T) {
	client := &fakeGenClient{
		credentials: 1,
		errs:        []error{domain.ErrOverloaded, domain.ErrOverloaded, domain.ErrOverloaded},
	}
	var sleeps []time.Duration
	g := newTestGenerator(client, &sleeps)

	_, err := g.Generate(context.Background(), &domain.RecommendationSeed{Title: "Dell Monitor"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	// Last attempt fails without a third sleep.
	assert.Len(t, sleeps, 2)
}

func TestGenerate_OtherErrorIsFatalImmediately(t *testing.T) {
	client := &fakeGenClient{
		credentials: 2,
		errs:        []error{errors.New("connection reset")},
	}
	var sleeps []time.Duration
	g := newTestGenerator(client, &sleeps)

	_, err := g.Generate(context.Background(), &domain.RecommendationSeed{Title: "Dell Monitor"})
	require.Error(t, err)
	assert.Len(t, client.calls, 1)
	assert.Empty(t, sleeps)
}

func TestGenerate_SafetyBlockIsFatal(t *testing.T) {
	client := &fakeGenClient{
		credentials: 1,
		completions: []*domain.Completion{{StopReason: domain.StopSafety, Text: "blocked"}},
	}
	var sleeps []time.Duration
	g := newTestGenerator(client, &sleeps)

	_, err := g.Generate(context.Background(), &domain.RecommendationSeed{Title: "Dell Monitor"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestGenerate_LengthLimitStillParsesPartialText(t *testing.T) {
	client := &fakeGenClient{
		credentials: 1,
		completions: []*domain.Completion{
			{StopReason: domain.StopMaxTokens, Text: `{"product_names":["A","B"`},
		},
	}
	var sleeps []time.Duration
	g := newTestGenerator(client, &sleeps)

	set, err := g.Generate(context.Background(), &domain.RecommendationSeed{Title: "Dell Monitor"})
	require.NoError(t, err)
	// Two recovered names plus one backfilled placeholder.
	assert.Len(t, set.CandidateNames, 3)
	assert.Equal(t, []string{"A", "B", "Alternative monitor 3"}, set.CandidateNames)
}

func TestGenerate_EmptyTextIsFatal(t *testing.T) {
	client := &fakeGenClient{
		credentials: 1,
		completions: []*domain.Completion{{StopReason: domain.StopMaxTokens, Text: "  "}},
	}
	var sleeps []time.Duration
	g := newTestGenerator(client, &sleeps)

	_, err := g.Generate(context.Background(), &domain.RecommendationSeed{Title: "Dell Monitor"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty generation result")
}

func TestGenerate_UnparsableOutputIsFatal(t *testing.T) {
	client := &fakeGenClient{
		credentials: 1,
		completions: []*domain.Completion{completionWith("I cannot answer in JSON, sorry")},
	}
	var sleeps []time.Duration
	g := newTestGenerator(client, &sleeps)

	_, err := g.Generate(context.Background(), &domain.RecommendationSeed{Title: "Dell Monitor"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not extract structured result")
}

func TestGenerate_UsesSeedCategoryWhenPresent(t *testing.T) {
	client := &fakeGenClient{
		credentials: 1,
		completions: []*domain.Completion{completionWith(`{"product_names":[]}`)},
	}
	var sleeps []time.Duration
	g := newTestGenerator(client, &sleeps)

	set, err := g.Generate(context.Background(), &domain.RecommendationSeed{Title: "Product B0XYZ", Category: "smartphone"})
	require.NoError(t, err)
	assert.Equal(t, "smartphone", set.Category)
	assert.Equal(t, "Alternative smartphone 1", set.CandidateNames[0])
}

func TestGenerate_NilSeed(t *testing.T) {
	client := &fakeGenClient{credentials: 1}
	var sleeps []time.Duration
	g := newTestGenerator(client, &sleeps)

	_, err := g.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestBuildNamePrompt_TruncatesTitle(t *testing.T) {
	long := ""
	for i := 0; i < 20; i++ {
		long += "verylongword "
	}
	prompt := buildNamePrompt(long, "laptop")
	assert.Contains(t, prompt, long[:60])
	assert.NotContains(t, prompt, long[:61])
}
