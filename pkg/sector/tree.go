package sector

import (
	"bufio"
	"context"
	"io"
	"slices"
	"strings"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/store"
)

// PrintTree writes the subtree of a usage as indented text, two spaces
// per level. Synonyms follow their accepted taxon and are prefixed with
// an asterisk. Bare names have no place in a tree and are not shown.
func PrintTree(
	ctx context.Context,
	w io.Writer,
	cls store.Classification,
	datasetKey int,
	rootID string,
) error {
	root, err := cls.Usage(ctx, datasetKey, rootID)
	if err != nil {
		return err
	}

	type item struct {
		u     *model.Usage
		level int
	}

	bw := bufio.NewWriter(w)
	stack := []item{{u: root}}
	for len(stack) > 0 {
		if err = ctx.Err(); err != nil {
			return err
		}
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.u.IsBareName() {
			continue
		}
		if _, err = bw.WriteString(treeLine(it.u, it.level)); err != nil {
			return err
		}
		if !it.u.IsTaxon() {
			continue
		}

		children, err := cls.Children(ctx, datasetKey, it.u.ID)
		if err != nil {
			return err
		}
		synonyms, err := cls.Synonyms(ctx, datasetKey, it.u.ID)
		if err != nil {
			return err
		}
		for _, v := range slices.Backward(children) {
			stack = append(stack, item{u: v, level: it.level + 1})
		}
		for _, v := range slices.Backward(synonyms) {
			stack = append(stack, item{u: v, level: it.level + 1})
		}
	}
	return bw.Flush()
}

func treeLine(u *model.Usage, level int) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", level))
	if u.IsSynonym() {
		sb.WriteString("*")
	}
	sb.WriteString(u.Label())
	sb.WriteString(" [")
	sb.WriteString(u.Name.Rank.String())
	sb.WriteString("]\n")
	return sb.String()
}
