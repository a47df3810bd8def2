package chat

// Gemini model IDs
//
// | Model Name               | API Model ID               | Use Case                       |
// |--------------------------|----------------------------|--------------------------------|
// | Gemini 3 Flash (Preview) | gemini-3-flash-preview     | Classification and planning    |
// | Gemini 2.5 Flash         | gemini-2.5-flash           | Stable, balanced performance   |
// | Gemini 2.5 Flash-Lite    | gemini-2.5-flash-lite      | High-throughput, lowest cost   |
// | Gemini 3 Pro Image       | gemini-3-pro-image-preview | Image output through Gemini    |
// | Imagen 4                 | imagen-4.0-generate-001    | Text-to-image backgrounds      |
const (
	ModelGemini3FlashPreview = "gemini-3-flash-preview"
	ModelGemini25Flash       = "gemini-2.5-flash"
	ModelGemini25FlashLite   = "gemini-2.5-flash-lite"
	ModelGemini3ProImage     = "gemini-3-pro-image-preview"
	ModelImagen4             = "imagen-4.0-generate-001"
)

// Models selects the model per capability.
type Models struct {
	Text   string
	Vision string
	// Image is either an Imagen model (GenerateImages) or a Gemini model with
	// image output (GenerateContent with the IMAGE modality).
	Image string
}

// DefaultModels returns the default model selection.
func DefaultModels() Models {
	return Models{
		Text:   ModelGemini3FlashPreview,
		Vision: ModelGemini3FlashPreview,
		Image:  ModelImagen4,
	}
}
