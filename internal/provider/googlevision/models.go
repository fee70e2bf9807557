package googlevision

// Feature types understood by images:annotate.
const (
	FeatureFaceDetection = "FACE_DETECTION"
	FeatureTextDetection = "TEXT_DETECTION"
)

// BatchAnnotateRequest is the body of POST /images:annotate.
type BatchAnnotateRequest struct {
	Requests []AnnotateImageRequest `json:"requests"`
}

type AnnotateImageRequest struct {
	Image    Image     `json:"image"`
	Features []Feature `json:"features"`
}

// Image carries base64 encoded bytes.
type Image struct {
	Content string `json:"content"`
}

type Feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

// BatchAnnotateResponse holds one response per request, in order.
type BatchAnnotateResponse struct {
	Responses []AnnotateImageResponse `json:"responses"`
}

type AnnotateImageResponse struct {
	FaceAnnotations    []FaceAnnotation   `json:"faceAnnotations,omitempty"`
	TextAnnotations    []EntityAnnotation `json:"textAnnotations,omitempty"`
	FullTextAnnotation *TextAnnotation    `json:"fullTextAnnotation,omitempty"`
	Error              *Status            `json:"error,omitempty"`
}

type FaceAnnotation struct {
	BoundingPoly        BoundingPoly `json:"boundingPoly"`
	FDBoundingPoly      BoundingPoly `json:"fdBoundingPoly"`
	DetectionConfidence float64      `json:"detectionConfidence"`
}

type EntityAnnotation struct {
	Description string `json:"description"`
	Locale      string `json:"locale,omitempty"`
}

type TextAnnotation struct {
	Text string `json:"text"`
}

type BoundingPoly struct {
	Vertices []Vertex `json:"vertices"`
}

// Vertex coordinates are omitted by the API when zero.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Status is the error envelope used both per response and for the whole call.
type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

type errorResponse struct {
	Error *Status `json:"error"`
}
