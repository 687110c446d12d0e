package annotator

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"

	"validascan/internal/entity"
)

// Confidence tier colors. Boundary values belong to the lower tier:
// exactly 0.7 is yellow, exactly 0.5 is red.
var (
	colorGreen  = [3]int{34, 197, 94}
	colorYellow = [3]int{234, 179, 8}
	colorRed    = [3]int{239, 68, 68}
)

const (
	maskFillAlpha = 76 // 0.3 on a 0-255 scale
	maskLineWidth = 2
	boxLineWidth  = 3
	labelHeight   = 20
	labelPadding  = 4
)

// Render draws the detection overlays onto a fresh copy of src and returns
// it. Detections are drawn in array order, later ones over earlier ones.
// Calling it again with a new response starts from the base image, never
// accumulating onto prior drawing.
func Render(src image.Image, resp *entity.ProcessImageResponse) image.Image {
	bounds := src.Bounds()
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.DrawImage(src, 0, 0)

	if resp != nil {
		for _, detection := range resp.Detections {
			drawDetection(dc, detection)
		}
	}

	return dc.Image()
}

func drawDetection(dc *gg.Context, det entity.DetectionResult) {
	tier := tierColor(det.Confidence)

	anchorX, anchorY := det.BBox.X1, det.BBox.Y1

	if det.HasMask && validPolygon(det.Segmentation) {
		dc.NewSubPath()
		dc.MoveTo(det.Segmentation[0][0], det.Segmentation[0][1])
		for _, point := range det.Segmentation[1:] {
			dc.LineTo(point[0], point[1])
		}
		dc.ClosePath()

		dc.SetRGBA255(tier[0], tier[1], tier[2], maskFillAlpha)
		dc.FillPreserve()
		dc.SetRGBA255(tier[0], tier[1], tier[2], 255)
		dc.SetLineWidth(maskLineWidth)
		dc.Stroke()

		if det.BBox.Width == 0 && det.BBox.Height == 0 {
			anchorX, anchorY = polygonTopLeft(det.Segmentation)
		}
	} else {
		dc.SetRGBA255(tier[0], tier[1], tier[2], 255)
		dc.SetLineWidth(boxLineWidth)
		dc.DrawRectangle(det.BBox.X1, det.BBox.Y1, det.BBox.Width, det.BBox.Height)
		dc.Stroke()
	}

	drawLabel(dc, det, tier, anchorX, anchorY)
}

func drawLabel(dc *gg.Context, det entity.DetectionResult, tier [3]int, x, y float64) {
	label := fmt.Sprintf("%s %d%%", det.ClassName, int(math.Round(det.Confidence*100)))
	textWidth, _ := dc.MeasureString(label)

	dc.SetRGBA255(tier[0], tier[1], tier[2], 255)
	dc.DrawRectangle(x, y-labelHeight-labelPadding, textWidth+2*labelPadding, labelHeight+labelPadding)
	dc.Fill()

	dc.SetRGB255(255, 255, 255)
	dc.DrawString(label, x+labelPadding, y-labelPadding)
}

func tierColor(confidence float64) [3]int {
	switch {
	case confidence > 0.7:
		return colorGreen
	case confidence > 0.5:
		return colorYellow
	default:
		return colorRed
	}
}

func validPolygon(points [][]float64) bool {
	if len(points) == 0 {
		return false
	}
	for _, p := range points {
		if len(p) < 2 {
			return false
		}
	}
	return true
}

func polygonTopLeft(points [][]float64) (float64, float64) {
	minX, minY := points[0][0], points[0][1]
	for _, p := range points[1:] {
		if p[0] < minX {
			minX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
	}
	return minX, minY
}
