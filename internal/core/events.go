package core

// GenerationJobEvent is the payload consumed from the jobs subject. Field
// names mirror the JSON body accepted by the hosted generation endpoint.
type GenerationJobEvent struct {
	JobID       string  `json:"job_id"`
	Prompt      string  `json:"prompt"`
	Duration    float64 `json:"duration"`
	ModelSize   string  `json:"model_size"`
	TopK        int     `json:"top_k"`
	TopP        float64 `json:"top_p"`
	Temperature float64 `json:"temperature"`
	CFGCoef     float64 `json:"cfg_coef"`
}

// Request converts the event into a validated-ready generation request.
// Zero-valued sampling parameters fall back to the MusicGen defaults, the
// same way the hosted endpoint treats omitted JSON fields.
func (e GenerationJobEvent) Request() GenerationRequest {
	req := GenerationRequest{
		Prompt:      e.Prompt,
		Duration:    e.Duration,
		Model:       ModelSize(e.ModelSize),
		TopK:        e.TopK,
		TopP:        e.TopP,
		Temperature: e.Temperature,
		CFGCoef:     e.CFGCoef,
	}

	if req.Duration == 0 {
		req.Duration = DefaultDuration
	}

	if req.Model == "" {
		req.Model = ModelSmall
	}

	if req.TopK == 0 {
		req.TopK = DefaultTopK
	}

	if req.Temperature == 0 {
		req.Temperature = DefaultTemperature
	}

	if req.CFGCoef == 0 {
		req.CFGCoef = DefaultCFGCoef
	}

	return req
}

// ClipStoredEvent is published in reply to a processed job. AudioKey names
// the generated WAV clip in the audio object store bucket.
type ClipStoredEvent struct {
	JobID      string  `json:"job_id"`
	Prompt     string  `json:"prompt"`
	AudioKey   string  `json:"audio_key"`
	SampleRate int     `json:"sample_rate"`
	Duration   float64 `json:"duration"`
	SizeBytes  int     `json:"size_bytes"`
}
