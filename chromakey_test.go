package main

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func removeNRGBA(t *testing.T, r Remover, img image.Image) *image.NRGBA {
	t.Helper()
	out, err := r.Remove(context.Background(), img)
	require.NoError(t, err)
	nrgba, ok := out.(*image.NRGBA)
	require.True(t, ok, "expected *image.NRGBA, got %T", out)
	return nrgba
}

func TestChromaKeyRemover_ClearsBorderBackground(t *testing.T) {
	out := removeNRGBA(t, NewChromaKeyRemover(48), subjectImage(40, 40))

	for _, p := range []image.Point{{0, 0}, {39, 0}, {0, 39}, {39, 39}, {5, 20}} {
		assert.Equal(t, uint8(0), out.NRGBAAt(p.X, p.Y).A, "pixel %v should be transparent", p)
	}
	center := out.NRGBAAt(20, 20)
	assert.Equal(t, color.NRGBA{R: 220, G: 10, B: 10, A: 255}, center)
}

func TestChromaKeyRemover_KeepsEnclosedBackdrop(t *testing.T) {
	// A red ring with a white hole: the hole is not connected to the border.
	img := image.NewRGBA(image.Rect(0, 0, 30, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			if x >= 8 && x < 22 && y >= 8 && y < 22 && (x < 12 || x >= 18 || y < 12 || y >= 18) {
				c = color.RGBA{R: 200, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	out := removeNRGBA(t, NewChromaKeyRemover(48), img)
	assert.Equal(t, uint8(0), out.NRGBAAt(2, 2).A)
	assert.Equal(t, uint8(255), out.NRGBAAt(15, 15).A)
}

func TestChromaKeyRemover_FeathersEdges(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			if x >= 6 && x < 14 && y >= 6 && y < 14 {
				c = color.RGBA{R: 220, G: 220, B: 220, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	out := removeNRGBA(t, NewChromaKeyRemover(48), img)

	edge := out.NRGBAAt(6, 10).A
	assert.Greater(t, edge, uint8(0))
	assert.Less(t, edge, uint8(255))
	assert.Equal(t, uint8(255), out.NRGBAAt(10, 10).A)
}

func TestChromaKeyRemover_DoesNotMutateInput(t *testing.T) {
	src := subjectImage(16, 16)
	before := append([]uint8(nil), src.Pix...)

	_ = removeNRGBA(t, NewChromaKeyRemover(48), src)
	assert.Equal(t, before, src.Pix)

	nrgba := toNRGBA(src)
	nrgbaBefore := append([]uint8(nil), nrgba.Pix...)
	out := removeNRGBA(t, NewChromaKeyRemover(48), nrgba)
	assert.NotSame(t, nrgba, out)
	assert.Equal(t, nrgbaBefore, nrgba.Pix)
}

func TestChromaKeyRemover_Uniform(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	out := removeNRGBA(t, NewChromaKeyRemover(10), img)
	for i := 3; i < len(out.Pix); i += 4 {
		require.Equal(t, uint8(0), out.Pix[i])
	}
}

func TestChromaKeyRemover_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := NewChromaKeyRemover(48).Remove(ctx, subjectImage(32, 32))
	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.Canceled)
}
