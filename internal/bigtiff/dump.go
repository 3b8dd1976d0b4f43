package bigtiff

import (
	"fmt"
	"io"
	"strings"
)

// DumpDirectories writes a human-readable listing of every directory, tag and
// decoded value with absolute file offsets. Read-only; no effect on file
// state.
func (f *File) DumpDirectories(w io.Writer) error {
	rule := strings.Repeat("=", 80)
	if _, err := fmt.Fprintf(w, "%s\n%s\n", rule, rule); err != nil {
		return err
	}
	for _, dir := range f.Directories {
		fmt.Fprintln(w, strings.Repeat("*", 80))
		fmt.Fprintf(w, "DIRECTORY %d at offset %d\n", dir.Index, dir.Offset)
		for i := range dir.Entries {
			ent := &dir.Entries[i]
			name := TagName(ent.Tag)
			if name == "" {
				name = "?"
			}
			typeName := "?"
			if ft, ok := fieldTypes[ent.Type]; ok {
				typeName = ft.Name
			}
			fmt.Fprintln(w, strings.Repeat("_", 80))
			fmt.Fprintf(w, "Entry offset: %d\n", ent.TagPos)
			fmt.Fprintf(w, "Tag:    %d\t%s\n", ent.Tag, name)
			fmt.Fprintf(w, "Type:   %d\t%s\n", ent.Type, typeName)
			fmt.Fprintf(w, "Count:  %d\n", ent.Count)
			fmt.Fprintf(w, "Slot:   %d\n", ent.Raw)
			fmt.Fprintf(w, "Value:  %s\n", ent.Display())
		}
		fmt.Fprintf(w, "Next directory offset: %d\n\n", dir.NextOffset)
	}
	return nil
}
