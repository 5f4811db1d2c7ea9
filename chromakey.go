package main

import (
	"context"
	"image"
	"math"
	"slices"
)

// ChromaKeyRemover clears the connected region of near-uniform colour that
// touches the image border. It suits product shots and scans on a plain
// backdrop and needs no model.
type ChromaKeyRemover struct {
	tolerance float64
}

func NewChromaKeyRemover(tolerance float64) *ChromaKeyRemover {
	return &ChromaKeyRemover{tolerance: tolerance}
}

func (c *ChromaKeyRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	// Always copy: the caller's image must stay untouched.
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	src := toNRGBA(img)
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()*4], src.Pix[y*src.Stride:y*src.Stride+b.Dx()*4])
	}

	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return out, nil
	}

	bg := borderColor(out)
	tol := c.tolerance
	background := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))

	push := func(x, y int) {
		i := y*w + x
		if background[i] || colorDistance(out, x, y, bg) > tol {
			return
		}
		background[i] = true
		queue = append(queue, i)
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for n := 0; len(queue) > 0; n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := i%w, i/w
		if x > 0 {
			push(x-1, y)
		}
		if x < w-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < h-1 {
			push(x, y+1)
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			a := y*out.Stride + x*4 + 3
			if background[i] {
				out.Pix[a] = 0
				continue
			}
			if !touchesBackground(background, w, h, x, y) {
				continue
			}
			// Feather the subject's edge: pixels close to the backdrop colour
			// become partially transparent.
			d := colorDistance(out, x, y, bg)
			if d < 2*tol {
				alpha := (d - tol) / tol
				out.Pix[a] = uint8(math.Round(float64(out.Pix[a]) * math.Max(alpha, 0)))
			}
		}
	}

	return out, nil
}

// borderColor is the per-channel median of the outermost pixels.
func borderColor(img *image.NRGBA) [3]uint8 {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	var rs, gs, bs []uint8
	sample := func(x, y int) {
		o := y*img.Stride + x*4
		rs = append(rs, img.Pix[o])
		gs = append(gs, img.Pix[o+1])
		bs = append(bs, img.Pix[o+2])
	}
	for x := 0; x < w; x++ {
		sample(x, 0)
		sample(x, h-1)
	}
	for y := 1; y < h-1; y++ {
		sample(0, y)
		sample(w-1, y)
	}
	return [3]uint8{median(rs), median(gs), median(bs)}
}

func median(v []uint8) uint8 {
	slices.Sort(v)
	return v[len(v)/2]
}

func colorDistance(img *image.NRGBA, x, y int, c [3]uint8) float64 {
	o := y*img.Stride + x*4
	dr := float64(img.Pix[o]) - float64(c[0])
	dg := float64(img.Pix[o+1]) - float64(c[1])
	db := float64(img.Pix[o+2]) - float64(c[2])
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func touchesBackground(bg []bool, w, h, x, y int) bool {
	return (x > 0 && bg[y*w+x-1]) ||
		(x < w-1 && bg[y*w+x+1]) ||
		(y > 0 && bg[(y-1)*w+x]) ||
		(y < h-1 && bg[(y+1)*w+x])
}
