package dataset

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const maxLineSize = 1 << 20

// ParseCategories returns every whitespace-separated token of r in order,
// duplicates included.
func ParseCategories(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(bufio.ScanWords)
	categories := []string{}
	for scanner.Scan() {
		categories = append(categories, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read category list: %w", err)
	}
	return categories, nil
}

// ParseAnnotations reads one annotation per non-blank line, in the form
// "<class> <x_center> <y_center> <width> <height>". Fields after the fifth are
// ignored. The first bad line fails the whole parse with a *MalformedError.
func ParseAnnotations(r io.Reader) ([]Annotation, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	annotations := []Annotation{}
	lineno := 0
	for scanner.Scan() {
		lineno++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		a, err := parseAnnotation(fields)
		if err != nil {
			return nil, &MalformedError{Line: lineno, Reason: err.Error()}
		}
		annotations = append(annotations, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read annotations: %w", err)
	}
	return annotations, nil
}

func parseAnnotation(fields []string) (Annotation, error) {
	if len(fields) < 5 {
		return Annotation{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}
	var nums [4]float64
	for i := range nums {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return Annotation{}, fmt.Errorf("field %d: %q is not a number", i+1, fields[i+1])
		}
		// NaN and infinities cannot be represented in JSON.
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Annotation{}, fmt.Errorf("field %d: %q is not finite", i+1, fields[i+1])
		}
		nums[i] = v
	}
	return Annotation{
		Class:   fields[0],
		XCenter: nums[0],
		YCenter: nums[1],
		Width:   nums[2],
		Height:  nums[3],
	}, nil
}

// AnnotationName maps an image file name to the name of its annotation file
// by replacing the final extension with ".txt". Leading dots do not start an
// extension, so ".hidden" maps to ".hidden.txt".
func AnnotationName(image string) string {
	return trimExt(image) + ".txt"
}

func trimExt(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name
	}
	if strings.Trim(name[:i], ".") == "" {
		return name
	}
	return name[:i]
}
