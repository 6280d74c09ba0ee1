package domain

import "fmt"

type ModelID string

const (
	FluxPro     ModelID = "flux-pro"
	FluxSchnell ModelID = "flux-schnell"
	Ideogram    ModelID = "ideogram"
)

// DefaultModel is used by inbound surfaces when the caller does not pick a model.
const DefaultModel = FluxPro

// Parameters is the fixed, per-model part of an upstream request.
// Implementations are closed to this package.
type Parameters interface {
	// Input merges the prompt into the fixed parameters. The prompt always wins.
	Input(prompt string) map[string]any
	isParameters()
}

type FluxProParameters struct {
	AspectRatio      string
	OutputFormat     string
	OutputQuality    int
	SafetyTolerance  int
	PromptUpsampling bool
}

func (p FluxProParameters) Input(prompt string) map[string]any {
	return map[string]any{
		"aspect_ratio":      p.AspectRatio,
		"output_format":     p.OutputFormat,
		"output_quality":    p.OutputQuality,
		"safety_tolerance":  p.SafetyTolerance,
		"prompt_upsampling": p.PromptUpsampling,
		"prompt":            prompt,
	}
}

func (FluxProParameters) isParameters() {}

type FluxSchnellParameters struct {
	NumOutputs    int
	AspectRatio   string
	OutputFormat  string
	OutputQuality int
	GoFast        bool
}

func (p FluxSchnellParameters) Input(prompt string) map[string]any {
	return map[string]any{
		"num_outputs":    p.NumOutputs,
		"aspect_ratio":   p.AspectRatio,
		"output_format":  p.OutputFormat,
		"output_quality": p.OutputQuality,
		"go_fast":        p.GoFast,
		"prompt":         prompt,
	}
}

func (FluxSchnellParameters) isParameters() {}

// IdeogramParameters passes Resolution and StyleType through verbatim; the
// upstream API accepts the literal "None".
type IdeogramParameters struct {
	Resolution        string
	StyleType         string
	AspectRatio       string
	MagicPromptOption string
}

func (p IdeogramParameters) Input(prompt string) map[string]any {
	return map[string]any{
		"resolution":          p.Resolution,
		"style_type":          p.StyleType,
		"aspect_ratio":        p.AspectRatio,
		"magic_prompt_option": p.MagicPromptOption,
		"prompt":              prompt,
	}
}

func (IdeogramParameters) isParameters() {}

type ModelDescriptor struct {
	ID               ModelID
	UpstreamName     string
	Name             string
	Description      string
	ShortDescription string
	Parameters       Parameters
}

var descriptors = []ModelDescriptor{
	{
		ID:               FluxPro,
		UpstreamName:     "black-forest-labs/flux-1.1-pro",
		Name:             "Flux 1.1 Pro",
		Description:      "Professional version with enhanced image quality and excellent prompt adherence.",
		ShortDescription: "Best for high-quality, detailed images",
		Parameters: FluxProParameters{
			AspectRatio:      "1:1",
			OutputFormat:     "webp",
			OutputQuality:    80,
			SafetyTolerance:  2,
			PromptUpsampling: true,
		},
	},
	{
		ID:               FluxSchnell,
		UpstreamName:     "black-forest-labs/flux-schnell",
		Name:             "Flux Schnell",
		Description:      "Fast and efficient version of Flux for quick image generation.",
		ShortDescription: "Optimized for speed and efficiency",
		Parameters: FluxSchnellParameters{
			NumOutputs:    1,
			AspectRatio:   "1:1",
			OutputFormat:  "webp",
			OutputQuality: 80,
			GoFast:        true,
		},
	},
	{
		ID:               Ideogram,
		UpstreamName:     "ideogram-ai/ideogram-v2",
		Name:             "Ideogram v2",
		Description:      "Advanced model specializing in illustrations, designs, and text rendering.",
		ShortDescription: "Perfect for designs with text elements",
		Parameters: IdeogramParameters{
			Resolution:        "None",
			StyleType:         "None",
			AspectRatio:       "1:1",
			MagicPromptOption: "Auto",
		},
	},
}

// Resolve returns the descriptor for id, or ErrInvalidModel.
func Resolve(id ModelID) (ModelDescriptor, error) {
	for _, d := range descriptors {
		if d.ID == id {
			return d, nil
		}
	}

	return ModelDescriptor{}, fmt.Errorf("%w: %q", ErrInvalidModel, id)
}

// Models returns every supported descriptor, default model first.
func Models() []ModelDescriptor {
	out := make([]ModelDescriptor, len(descriptors))
	copy(out, descriptors)
	return out
}
