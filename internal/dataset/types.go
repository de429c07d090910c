package dataset

// Annotation is one labeled bounding box of an image, in coordinates
// normalized to the image size.
type Annotation struct {
	Class   string  `json:"class"`
	XCenter float64 `json:"x_center"`
	YCenter float64 `json:"y_center"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}
