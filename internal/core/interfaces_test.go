// Package core_test tests the generation request model and its validation.
package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thaitrn/musicgen-service/internal/core"
)

func TestParseModelSize(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"small", "medium", "large"} {
		model, err := core.ParseModelSize(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(model))
	}

	_, err := core.ParseModelSize("extra-large")
	require.ErrorIs(t, err, core.ErrUnknownModelSize)

	_, err = core.ParseModelSize("")
	require.ErrorIs(t, err, core.ErrUnknownModelSize)
}

func TestModelSizeCheckpoint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "facebook/musicgen-small", core.ModelSmall.Checkpoint())
	assert.Equal(t, "facebook/musicgen-medium", core.ModelMedium.Checkpoint())
	assert.Equal(t, "facebook/musicgen-large", core.ModelLarge.Checkpoint())
}

func TestNewGenerationRequestDefaults(t *testing.T) {
	t.Parallel()

	req := core.NewGenerationRequest("lofi hip hop beat", core.ModelMedium)

	require.NoError(t, req.Validate())
	assert.InEpsilon(t, core.DefaultDuration, req.Duration, 0.001)
	assert.Equal(t, core.DefaultTopK, req.TopK)
	assert.InEpsilon(t, core.DefaultTemperature, req.Temperature, 0.001)
	assert.InEpsilon(t, core.DefaultCFGCoef, req.CFGCoef, 0.001)
}

func TestGenerationRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*core.GenerationRequest)
		wantErr error
	}{
		{
			name:    "empty prompt",
			mutate:  func(r *core.GenerationRequest) { r.Prompt = "" },
			wantErr: core.ErrPromptEmpty,
		},
		{
			name:    "zero duration",
			mutate:  func(r *core.GenerationRequest) { r.Duration = 0 },
			wantErr: core.ErrDurationNotPositive,
		},
		{
			name:    "negative duration",
			mutate:  func(r *core.GenerationRequest) { r.Duration = -3 },
			wantErr: core.ErrDurationNotPositive,
		},
		{
			name:    "unknown model size",
			mutate:  func(r *core.GenerationRequest) { r.Model = "tiny" },
			wantErr: core.ErrUnknownModelSize,
		},
		{
			name:    "negative top_k",
			mutate:  func(r *core.GenerationRequest) { r.TopK = -1 },
			wantErr: core.ErrTopKNegative,
		},
		{
			name:    "top_p above one",
			mutate:  func(r *core.GenerationRequest) { r.TopP = 1.5 },
			wantErr: core.ErrTopPRange,
		},
		{
			name:    "negative temperature",
			mutate:  func(r *core.GenerationRequest) { r.Temperature = -0.1 },
			wantErr: core.ErrTemperatureRange,
		},
		{
			name:    "negative cfg_coef",
			mutate:  func(r *core.GenerationRequest) { r.CFGCoef = -1 },
			wantErr: core.ErrCFGCoefNegative,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			req := core.NewGenerationRequest("ambient pads", core.ModelSmall)
			testCase.mutate(&req)

			err := req.Validate()
			require.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

func TestGenerationJobEventRequest(t *testing.T) {
	t.Parallel()

	// A minimal event gets the hosted endpoint's defaults.
	minimal := core.GenerationJobEvent{JobID: "j1", Prompt: "warm jazz trio"}
	req := minimal.Request()

	require.NoError(t, req.Validate())
	assert.Equal(t, core.ModelSmall, req.Model)
	assert.InEpsilon(t, core.DefaultDuration, req.Duration, 0.001)
	assert.Equal(t, core.DefaultTopK, req.TopK)

	// Explicit values are preserved.
	explicit := core.GenerationJobEvent{
		JobID:       "j2",
		Prompt:      "warm jazz trio",
		Duration:    12.5,
		ModelSize:   "large",
		TopK:        100,
		TopP:        0.9,
		Temperature: 0.8,
		CFGCoef:     2.0,
	}
	req = explicit.Request()

	require.NoError(t, req.Validate())
	assert.Equal(t, core.ModelLarge, req.Model)
	assert.InEpsilon(t, 12.5, req.Duration, 0.001)
	assert.Equal(t, 100, req.TopK)
	assert.InEpsilon(t, 0.9, req.TopP, 0.001)
}
