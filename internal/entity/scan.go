package entity

// Status values reported by the detection service.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

type BoundingBox struct {
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DetectionResult is a single object located by the detection service.
// Segmentation, when present, is an ordered polygon of [x, y] pairs.
type DetectionResult struct {
	BBox         BoundingBox `json:"bbox"`
	Confidence   float64     `json:"confidence"`
	ClassID      int         `json:"class_id"`
	ClassName    string      `json:"class_name"`
	HasMask      bool        `json:"has_mask,omitempty"`
	Segmentation [][]float64 `json:"segmentation,omitempty"`
}

type ParsedDate struct {
	Date            *string `json:"date"`
	Confidence      float64 `json:"confidence"`
	Format          *string `json:"format"`
	IsValid         bool    `json:"is_valid"`
	IsExpired       *bool   `json:"is_expired"`
	DaysUntilExpiry *int    `json:"days_until_expiry"`
}

type OCRResult struct {
	Text                string  `json:"text"`
	Confidence          float64 `json:"confidence"`
	Engine              string  `json:"engine"`
	ProcessingTime      float64 `json:"processing_time"`
	CropOriginalBase64  string  `json:"crop_original_base64"`
	CropProcessedBase64 string  `json:"crop_processed_base64"`
}

// ProcessImageResponse is the aggregate returned by the detection service.
// It is kept verbatim; the gateway does not reshape or second-guess it.
type ProcessImageResponse struct {
	Status      string            `json:"status"`
	Message     string            `json:"message"`
	Detections  []DetectionResult `json:"detections"`
	Dates       []ParsedDate      `json:"dates"`
	BestDate    *ParsedDate       `json:"best_date"`
	ProcessedAt string            `json:"processed_at"`
	OCRResults  []OCRResult       `json:"ocr_results,omitempty"`
}

// ScanRecord is the gateway-side envelope persisted for one processed upload.
type ScanRecord struct {
	ID           string                `json:"id"`
	OriginalName string                `json:"original_name"`
	ContentHash  string                `json:"content_hash"`
	Width        int                   `json:"width"`
	Height       int                   `json:"height"`
	Result       *ProcessImageResponse `json:"result"`
	CreatedAt    string                `json:"created_at"`
}

type ScanResponse struct {
	ID           string                `json:"id"`
	Result       *ProcessImageResponse `json:"result"`
	AnnotatedURL string                `json:"annotated_url"`
	Cached       bool                  `json:"cached"`
}

// ScanEvent is published after each completed scan.
type ScanEvent struct {
	ScanID      string `json:"scan_id"`
	Status      string `json:"status"`
	Detections  int    `json:"detections"`
	BestExpired *bool  `json:"best_expired,omitempty"`
	ProcessedAt string `json:"processed_at"`
}

type CapabilityFlags struct {
	IsIOS         bool `json:"is_ios"`
	IsSafari      bool `json:"is_safari"`
	CameraCapture bool `json:"camera_capture"`
}

type DiagnosticsReport struct {
	Service      string          `json:"service"`
	Runtime      RuntimeSnapshot `json:"runtime"`
	Upstream     ProbeStatus     `json:"upstream"`
	Capabilities CapabilityFlags `json:"capabilities"`
}

// RuntimeSnapshot is a plain one-shot record of the process environment,
// taken once per diagnostics request.
type RuntimeSnapshot struct {
	Hostname  string `json:"hostname"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	NumCPU    int    `json:"num_cpu"`
	PID       int    `json:"pid"`
}

// ProbeStatus never carries an error; probe failures are downgraded here.
type ProbeStatus struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
