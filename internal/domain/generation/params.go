package generation

// Task.Params is an opaque map[string]interface{} as far as the Task Store
// is concerned; these helpers decode it back into the shapes the
// Generation Controller expects. Values are placed there in-process by the
// HTTP Surface when it enqueues an async job, so no JSON (de)serialization
// boundary is crossed here.

func strParam(params map[string]interface{}, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func intParam(params map[string]interface{}, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func int64Param(params map[string]interface{}, key string) int64 {
	switch v := params[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func floatParam(params map[string]interface{}, key string) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func imagesParam(params map[string]interface{}, key string) [][]byte {
	v, ok := params[key].([][]byte)
	if !ok {
		return nil
	}
	return v
}

// InputFromParams decodes a task's Params map into an Input, for Runner and
// for tests constructing tasks directly.
func InputFromParams(params map[string]interface{}) Input {
	return Input{
		Model:           strParam(params, "model"),
		Prompt:          strParam(params, "prompt"),
		NegativePrompt:  strParam(params, "negative_prompt"),
		Ratio:           strParam(params, "ratio"),
		ResolutionTier:  strParam(params, "resolution_tier"),
		Seed:            int64Param(params, "seed"),
		SampleStrength:  floatParam(params, "sample_strength"),
		Count:           intParam(params, "count"),
		Images:          imagesParam(params, "images"),
		DurationSeconds: intParam(params, "duration_seconds"),
	}
}
