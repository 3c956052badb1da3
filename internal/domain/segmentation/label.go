package segmentation

import "strings"

// Label класс находки для отображения на дашборде.
type Label string

const (
	LabelCancer Label = "cancer"
	LabelPolyp  Label = "polyp"
	LabelNormal Label = "normal"
)

const (
	cancerIoU = 0.7
	polypIoU  = 0.3
)

// Classify раскладывает IoU по трём классам. Границы строгие: 0.7 это ещё polyp, 0.3 это normal.
func Classify(iou float64) Label {
	switch {
	case iou > cancerIoU:
		return LabelCancer
	case iou > polypIoU:
		return LabelPolyp
	default:
		return LabelNormal
	}
}

// ParseLabel разбирает строковое значение класса без учёта регистра.
func ParseLabel(s string) (Label, bool) {
	switch l := Label(strings.ToLower(strings.TrimSpace(s))); l {
	case LabelCancer, LabelPolyp, LabelNormal:
		return l, true
	}
	return "", false
}
