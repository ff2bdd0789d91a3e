// Package boundary isolates document-shaped regions from cluttered photo
// backgrounds and presents them as if scanned top-down, either through a
// four-point perspective rectification or an axis-aligned crop. The
// segmenter variant finds several smaller regions in a single frame.
package boundary

// Config holds the calibration parameters for document boundary detection.
// The area and rectangularity windows are empirically tuned on phone photos
// of paperwork; treat them as calibration values to be validated against a
// labeled corpus rather than derived constants.
type Config struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Candidate region filters. A contour is a candidate only when its
	// area ratio against the frame lies inside [MinAreaRatio,
	// MaxAreaRatio] and its rectangularity clears MinRectangularity.
	MinAreaRatio      float64 `mapstructure:"min_area_ratio" yaml:"min_area_ratio"`
	MaxAreaRatio      float64 `mapstructure:"max_area_ratio" yaml:"max_area_ratio"`
	MinRectangularity float64 `mapstructure:"min_rectangularity" yaml:"min_rectangularity"`

	// Polygon approximation: contours must reduce to MinVertices..MaxVertices
	// corners to qualify as document-shaped.
	MinVertices int `mapstructure:"min_vertices" yaml:"min_vertices"`
	MaxVertices int `mapstructure:"max_vertices" yaml:"max_vertices"`

	// Mask construction.
	BlurSigma        float64 `mapstructure:"blur_sigma" yaml:"blur_sigma"`
	EdgeThreshold    uint8   `mapstructure:"edge_threshold" yaml:"edge_threshold"`
	DilateKernel     int     `mapstructure:"dilate_kernel" yaml:"dilate_kernel"`
	DilateIterations int     `mapstructure:"dilate_iterations" yaml:"dilate_iterations"`

	// Long edge used for contour analysis; regions are mapped back to the
	// full-resolution frame before cropping or warping.
	AnalysisMaxDim int `mapstructure:"analysis_max_dim" yaml:"analysis_max_dim"`

	// Fraction of the region size added as padding on axis-aligned crops.
	CropPadding float64 `mapstructure:"crop_padding" yaml:"crop_padding"`
}

// DefaultConfig returns detection defaults for a single dominant document.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		MinAreaRatio:      0.15,
		MaxAreaRatio:      0.95,
		MinRectangularity: 0.65,
		MinVertices:       4,
		MaxVertices:       6,
		BlurSigma:         1.5,
		EdgeThreshold:     64,
		DilateKernel:      3,
		DilateIterations:  2,
		AnalysisMaxDim:    1000,
		CropPadding:       0.01,
	}
}

// SegmenterConfig tunes multi-document segmentation. It reuses the detector
// filters with a lower area floor so several smaller regions (two ID cards
// side by side, for example) survive filtering.
type SegmenterConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	MinAreaRatio float64 `mapstructure:"min_area_ratio" yaml:"min_area_ratio"`
	MaxRegions   int     `mapstructure:"max_regions" yaml:"max_regions"`

	// Vertical distance, as a fraction of frame height, within which two
	// regions are considered to be on the same row when ordering.
	RowTolerance float64 `mapstructure:"row_tolerance" yaml:"row_tolerance"`
}

// DefaultSegmenterConfig returns segmentation defaults.
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		Enabled:      false,
		MinAreaRatio: 0.08,
		MaxRegions:   4,
		RowTolerance: 0.05,
	}
}
