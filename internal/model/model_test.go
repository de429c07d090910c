package model

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 255, A: 255})
		}
	}
	input := Preprocess(img, 4)
	require.Len(t, input, 3*4*4)
	for i := 0; i < 16; i++ {
		assert.InDelta(t, 1.0, input[i], 0.01, "red at %d", i)
		assert.InDelta(t, 0.0, input[16+i], 0.01, "green at %d", i)
		assert.InDelta(t, 1.0, input[32+i], 0.01, "blue at %d", i)
	}
}

func TestArgmax(t *testing.T) {
	p := argmax([]float32{-1, 3, 2, 9}, []string{"cat", "dog", "bird"})
	assert.Equal(t, "dog", p.Class)
	assert.Equal(t, float32(3), p.Confidence)
	assert.Equal(t, map[string]float32{"cat": -1, "dog": 3, "bird": 2}, p.Predictions)

	p = argmax([]float32{-5, -2}, []string{"cat", "dog"})
	assert.Equal(t, "dog", p.Class)
}

func TestLoadMetadata(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0600))
		return p
	}

	m, err := LoadMetadata(write("ok.json",
		`{"input_shape":[1,3,48,48],"output_shape":[1,2],"classes":["cat","dog"],"image_size":48}`))
	require.NoError(t, err)
	assert.Equal(t, 3*48*48, m.InputSize())
	assert.Equal(t, []string{"cat", "dog"}, m.Classes)

	_, err = LoadMetadata(write("noclasses.json",
		`{"input_shape":[1,3,48,48],"output_shape":[1,2],"classes":[],"image_size":48}`))
	assert.Error(t, err)

	_, err = LoadMetadata(write("shape.json",
		`{"input_shape":[1,1,48,48],"output_shape":[1,2],"classes":["a","b"],"image_size":48}`))
	assert.Error(t, err)

	_, err = LoadMetadata(write("broken.json", `{`))
	assert.Error(t, err)

	_, err = LoadMetadata(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
