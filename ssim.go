package glyphsim

import (
	"fmt"

	"github.com/wbrown/glyphsim/imageutil"
)

// SSIM constants for 8-bit dynamic range, standard k1=0.01, k2=0.03.
const (
	ssimWindow = 8
	ssimC1     = (0.01 * 255) * (0.01 * 255)
	ssimC2     = (0.03 * 255) * (0.03 * 255)
)

// SimilarityFunc computes a structural similarity score in [0,1] for
// two greyscale images of identical dimensions, 1 meaning
// pixel-structure-identical. Implementations must be deterministic:
// fixed inputs produce bit-identical scores.
type SimilarityFunc func(a, b *imageutil.GrayImage) (float64, error)

// SSIMGray computes structural similarity directly on greyscale
// samples: an 8x8 uniform window slid one pixel at a time, with
// per-window mean, variance, and covariance accumulated in a single
// pass. No color-channel expansion is involved.
func SSIMGray(a, b *imageutil.GrayImage) (float64, error) {
	if err := checkShapes(a, b); err != nil {
		return 0, err
	}

	w, h := a.Width(), a.Height()
	win := ssimWindow
	if win > w {
		win = w
	}
	if win > h {
		win = h
	}
	n := float64(win * win)

	var total float64
	windows := 0
	for wy := 0; wy+win <= h; wy++ {
		for wx := 0; wx+win <= w; wx++ {
			var sumA, sumB, sumAA, sumBB, sumAB float64
			for y := wy; y < wy+win; y++ {
				rowA := a.Pix[y*a.Stride+wx : y*a.Stride+wx+win]
				rowB := b.Pix[y*b.Stride+wx : y*b.Stride+wx+win]
				for i := 0; i < win; i++ {
					pa := float64(rowA[i])
					pb := float64(rowB[i])
					sumA += pa
					sumB += pb
					sumAA += pa * pa
					sumBB += pb * pb
					sumAB += pa * pb
				}
			}
			muA := sumA / n
			muB := sumB / n
			varA := sumAA/n - muA*muA
			varB := sumBB/n - muB*muB
			cov := sumAB/n - muA*muB

			total += windowSSIM(muA, muB, varA, varB, cov)
			windows++
		}
	}

	return clampScore(total / float64(windows)), nil
}

// SSIMReference is the textbook two-pass formulation of the same
// windowed metric: explicit window means first, then centered variance
// and covariance sums. It exists as an independent cross-check for
// SSIMGray; the two must agree within 0.005 absolute on any normalized
// pair.
func SSIMReference(a, b *imageutil.GrayImage) (float64, error) {
	if err := checkShapes(a, b); err != nil {
		return 0, err
	}

	w, h := a.Width(), a.Height()
	win := ssimWindow
	if win > w {
		win = w
	}
	if win > h {
		win = h
	}
	n := float64(win * win)

	var total float64
	windows := 0
	for wy := 0; wy+win <= h; wy++ {
		for wx := 0; wx+win <= w; wx++ {
			var sumA, sumB float64
			for y := wy; y < wy+win; y++ {
				for x := wx; x < wx+win; x++ {
					sumA += float64(a.Pix[y*a.Stride+x])
					sumB += float64(b.Pix[y*b.Stride+x])
				}
			}
			muA := sumA / n
			muB := sumB / n

			var varA, varB, cov float64
			for y := wy; y < wy+win; y++ {
				for x := wx; x < wx+win; x++ {
					da := float64(a.Pix[y*a.Stride+x]) - muA
					db := float64(b.Pix[y*b.Stride+x]) - muB
					varA += da * da
					varB += db * db
					cov += da * db
				}
			}
			varA /= n
			varB /= n
			cov /= n

			total += windowSSIM(muA, muB, varA, varB, cov)
			windows++
		}
	}

	return clampScore(total / float64(windows)), nil
}

// windowSSIM combines luminance, contrast and structure for one window.
func windowSSIM(muA, muB, varA, varB, cov float64) float64 {
	num := (2*muA*muB + ssimC1) * (2*cov + ssimC2)
	den := (muA*muA + muB*muB + ssimC1) * (varA + varB + ssimC2)
	return num / den
}

func checkShapes(a, b *imageutil.GrayImage) error {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return fmt.Errorf("ssim requires equal shapes, got %dx%d vs %dx%d",
			a.Width(), a.Height(), b.Width(), b.Height())
	}
	if a.Width() == 0 || a.Height() == 0 {
		return fmt.Errorf("ssim requires non-empty images")
	}
	return nil
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
