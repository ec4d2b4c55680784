package export

import (
	"bufio"
	"fmt"
	"io"

	"sketchive/internal/state"
)

// Summary writes a plain text listing of the board and its strokes.
func Summary(w io.Writer, wb *state.Whiteboard, strokes []state.Stroke) error {
	bw := bufio.NewWriter(w)

	title := fmt.Sprintf("Whiteboard %d", wb.ID)
	if wb.Name != "" {
		title += ": " + wb.Name
	}
	fmt.Fprintln(bw, title)
	for range title {
		bw.WriteByte('=')
	}
	fmt.Fprintf(bw, "\n\nTotal strokes: %d\n\n", len(strokes))

	for i, st := range strokes {
		fmt.Fprintf(bw, "Stroke %d (id %d):\n", i+1, st.ID)
		fmt.Fprintf(bw, "  Points: %d\n", len(st.Path))
		fmt.Fprintf(bw, "  Color: %s\n", st.Color)
		fmt.Fprintf(bw, "  Width: %g\n", st.Width)
		if !st.CreatedAt.IsZero() {
			fmt.Fprintf(bw, "  Time: %s\n", st.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		if len(st.Path) > 0 {
			start, end := st.Path[0], st.Path[len(st.Path)-1]
			fmt.Fprintf(bw, "  Start: (%.2f, %.2f)\n", start.X, start.Y)
			if len(st.Path) > 1 {
				fmt.Fprintf(bw, "  End: (%.2f, %.2f)\n", end.X, end.Y)
			}
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
