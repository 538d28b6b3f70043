// ABOUTME: Held-out evaluation: confusion matrix and per-class precision/recall/F1.
// ABOUTME: Undefined ratios (0/0) are reported as 0.
package risk

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// ClassLabels names the negative and positive classes in report order.
var ClassLabels = [2]string{"False", "True"}

// ConfusionMatrix counts outcomes as [actual][predicted], index 1 = injured.
type ConfusionMatrix [2][2]int

// ClassScore holds precision, recall and F1 for one row of the report.
type ClassScore struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation summarises predictions on the test partition.
type Evaluation struct {
	Matrix      ConfusionMatrix `json:"confusion_matrix"`
	Classes     [2]ClassScore   `json:"classes"`
	Accuracy    float64         `json:"accuracy"`
	MacroAvg    ClassScore      `json:"macro_avg"`
	WeightedAvg ClassScore      `json:"weighted_avg"`
	Total       int             `json:"total"`
}

// Evaluate compares predicted labels to actual ones.
func Evaluate(actual, predicted []bool) Evaluation {
	var e Evaluation
	n := len(actual)
	if len(predicted) < n {
		n = len(predicted)
	}
	for i := 0; i < n; i++ {
		e.Matrix[b2i(actual[i])][b2i(predicted[i])]++
	}
	e.Total = n

	correct := e.Matrix[0][0] + e.Matrix[1][1]
	e.Accuracy = ratio(float64(correct), float64(n))

	var precisions, recalls, f1s, supports []float64
	for c := 0; c < 2; c++ {
		tp := float64(e.Matrix[c][c])
		predictedC := float64(e.Matrix[0][c] + e.Matrix[1][c])
		actualC := float64(e.Matrix[c][0] + e.Matrix[c][1])

		s := ClassScore{
			Label:     ClassLabels[c],
			Precision: ratio(tp, predictedC),
			Recall:    ratio(tp, actualC),
			Support:   int(actualC),
		}
		s.F1 = ratio(2*s.Precision*s.Recall, s.Precision+s.Recall)
		e.Classes[c] = s

		precisions = append(precisions, s.Precision)
		recalls = append(recalls, s.Recall)
		f1s = append(f1s, s.F1)
		supports = append(supports, actualC)
	}

	e.MacroAvg = ClassScore{
		Label:     "macro avg",
		Precision: stat.Mean(precisions, nil),
		Recall:    stat.Mean(recalls, nil),
		F1:        stat.Mean(f1s, nil),
		Support:   n,
	}
	e.WeightedAvg = ClassScore{Label: "weighted avg", Support: n}
	if n > 0 {
		e.WeightedAvg.Precision = stat.Mean(precisions, supports)
		e.WeightedAvg.Recall = stat.Mean(recalls, supports)
		e.WeightedAvg.F1 = stat.Mean(f1s, supports)
	}
	return e
}

// String renders the evaluation as a fixed-width classification report.
func (e Evaluation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%12s %10s %10s %10s %10s\n\n", "", "precision", "recall", "f1-score", "support")
	for _, c := range e.Classes {
		writeRow(&b, c)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%12s %10s %10s %10.2f %10d\n", "accuracy", "", "", e.Accuracy, e.Total)
	writeRow(&b, e.MacroAvg)
	writeRow(&b, e.WeightedAvg)
	return b.String()
}

// MatrixString renders the confusion matrix with actual classes as rows.
func (e Evaluation) MatrixString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%16s %8s %8s\n", "", "pred "+ClassLabels[0], "pred "+ClassLabels[1])
	for a := 0; a < 2; a++ {
		fmt.Fprintf(&b, "%16s %8d %8d\n", "actual "+ClassLabels[a], e.Matrix[a][0], e.Matrix[a][1])
	}
	return b.String()
}

func writeRow(b *strings.Builder, s ClassScore) {
	fmt.Fprintf(b, "%12s %10.2f %10.2f %10.2f %10d\n", s.Label, s.Precision, s.Recall, s.F1, s.Support)
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
