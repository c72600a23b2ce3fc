package wrapper

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// maxNumberTreeDepth bounds /Kids recursion in malformed files
const maxNumberTreeDepth = 32

// ReadPageLabels reads the catalog's /PageLabels number tree using pdfcpu.
// It returns nil without error when the document has no page labels.
func ReadPageLabels(path string) (*PageLabels, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "read_page_labels",
			Err:     fmt.Errorf("failed to open file: %w", err),
		}
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "read_page_labels",
			Err:     fmt.Errorf("failed to read PDF context: %w", err),
		}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "read_page_labels",
			Err:     fmt.Errorf("failed to ensure page count: %w", err),
		}
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "read_page_labels",
			Err:     fmt.Errorf("failed to get catalog: %w", err),
		}
	}

	labelsObj, found := rootDict.Find("PageLabels")
	if !found {
		return nil, nil
	}

	tree, err := ctx.DereferenceDict(labelsObj)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "read_page_labels",
			Err:     fmt.Errorf("failed to dereference PageLabels: %w", err),
		}
	}
	if tree == nil {
		return nil, nil
	}

	ranges, err := collectLabelRanges(ctx, tree, 0)
	if err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "read_page_labels", Err: err}
	}
	if len(ranges) == 0 {
		return nil, nil
	}

	return NewPageLabels(ranges), nil
}

// collectLabelRanges walks a number tree node: leaves carry /Nums, inner nodes /Kids
func collectLabelRanges(ctx *model.Context, node types.Dict, depth int) ([]LabelRange, error) {
	if depth > maxNumberTreeDepth {
		return nil, fmt.Errorf("page label tree deeper than %d levels", maxNumberTreeDepth)
	}

	var ranges []LabelRange

	if numsObj, found := node.Find("Nums"); found {
		nums, err := ctx.DereferenceArray(numsObj)
		if err != nil {
			return nil, fmt.Errorf("failed to dereference Nums array: %w", err)
		}

		for i := 0; i+1 < len(nums); i += 2 {
			start, err := ctx.DereferenceInteger(nums[i])
			if err != nil || start == nil {
				continue
			}

			labelDict, err := ctx.DereferenceDict(nums[i+1])
			if err != nil || labelDict == nil {
				continue
			}

			ranges = append(ranges, parseLabelDict(ctx, int(*start), labelDict))
		}
	}

	if kidsObj, found := node.Find("Kids"); found {
		kids, err := ctx.DereferenceArray(kidsObj)
		if err != nil {
			return nil, fmt.Errorf("failed to dereference Kids array: %w", err)
		}

		for _, kidObj := range kids {
			kid, err := ctx.DereferenceDict(kidObj)
			if err != nil || kid == nil {
				continue
			}
			kidRanges, err := collectLabelRanges(ctx, kid, depth+1)
			if err != nil {
				return nil, err
			}
			ranges = append(ranges, kidRanges...)
		}
	}

	return ranges, nil
}

func parseLabelDict(ctx *model.Context, start int, labelDict types.Dict) LabelRange {
	r := LabelRange{StartIndex: start, First: 1}

	if styleObj, found := labelDict.Find("S"); found {
		if style, err := ctx.DereferenceName(styleObj, model.V10, nil); err == nil {
			r.Style = string(style)
		}
	}

	if prefixObj, found := labelDict.Find("P"); found {
		if prefix, err := ctx.DereferenceStringOrHexLiteral(prefixObj, model.V10, nil); err == nil {
			r.Prefix = prefix
		}
	}

	if firstObj, found := labelDict.Find("St"); found {
		if first, err := ctx.DereferenceInteger(firstObj); err == nil && first != nil {
			r.First = int(*first)
		}
	}

	return r
}

// ParsePDFDate parses a PDF date string such as D:20240131120000+01'00'
func ParsePDFDate(dateStr string) (time.Time, error) {
	// D:YYYYMMDDHHmmSSOHH'mm' with every part after the year optional
	dateStr = strings.TrimPrefix(strings.TrimSpace(dateStr), "D:")
	dateStr = strings.ReplaceAll(dateStr, "'", "")

	formats := []string{
		"20060102150405Z0700",
		"20060102150405Z07",
		"20060102150405",
		"200601021504",
		"2006010215",
		"20060102",
		"200601",
		"2006",
	}

	for _, format := range formats {
		if date, err := time.Parse(format, dateStr); err == nil {
			return date, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse PDF date: %s", dateStr)
}
