// Package model runs an ONNX image classifier over dataset images.
package model

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Classifier owns an ONNX Runtime session with a single input and output
// tensor, so runs are serialized.
type Classifier struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	Metadata     Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// LoadMetadata reads the JSON file describing a model's shapes and classes.
func LoadMetadata(path string) (Metadata, error) {
	var metadata Metadata
	b, err := os.ReadFile(path)
	if err != nil {
		return metadata, fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := json.Unmarshal(b, &metadata); err != nil {
		return metadata, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if len(metadata.Classes) == 0 {
		return metadata, fmt.Errorf("metadata %q lists no classes", path)
	}
	if metadata.ImageSize <= 0 {
		return metadata, fmt.Errorf("metadata %q has invalid image_size %d", path, metadata.ImageSize)
	}
	if want := 3 * metadata.ImageSize * metadata.ImageSize; metadata.InputSize() != want {
		return metadata, fmt.Errorf("metadata %q: input shape %v does not hold a %dx%d RGB image",
			path, metadata.InputShape, metadata.ImageSize, metadata.ImageSize)
	}
	return metadata, nil
}

// NewClassifier initializes the ONNX Runtime environment and loads the model.
func NewClassifier(modelPath, metadataPath string) (*Classifier, error) {
	metadata, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &Classifier{
		session:      session,
		Metadata:     metadata,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// Classify preprocesses img and runs the model on it.
func (c *Classifier) Classify(img image.Image) (*Prediction, error) {
	return c.Predict(Preprocess(img, c.Metadata.ImageSize))
}

// Predict runs the model on already preprocessed input.
func (c *Classifier) Predict(input []float32) (*Prediction, error) {
	if want := c.Metadata.InputSize(); len(input) != want {
		return nil, fmt.Errorf("expected %d values, got %d", want, len(input))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	copy(c.inputTensor.GetData(), input)
	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	return argmax(c.outputTensor.GetData(), c.Metadata.Classes), nil
}

func (c *Classifier) Close() {
	if c.inputTensor != nil {
		c.inputTensor.Destroy()
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
	}
	if c.session != nil {
		c.session.Destroy()
	}
	ort.DestroyEnvironment()
}

func argmax(scores []float32, classes []string) *Prediction {
	maxIdx := 0
	var maxVal float32
	predictions := make(map[string]float32)
	for i, val := range scores {
		if i >= len(classes) {
			break
		}
		predictions[classes[i]] = val
		if i == 0 || val > maxVal {
			maxVal = val
			maxIdx = i
		}
	}
	return &Prediction{
		Class:       classes[maxIdx],
		Confidence:  maxVal,
		Predictions: predictions,
	}
}
