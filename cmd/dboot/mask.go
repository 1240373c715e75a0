package main

import (
	"fmt"

	"github.com/maloquacious/dboot/internal/status"
	"github.com/spf13/cobra"
)

// applyMasks sets then clears raw bits. The bits carry no meaning here.
func applyMasks(w, set, clear status.Word) (status.Word, error) {
	if set&clear != 0 {
		return w, fmt.Errorf("bits %v are both set and cleared", set&clear)
	}
	return (w | set) &^ clear, nil
}

func maskFlag(cmd *cobra.Command, name string) (status.Word, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil || s == "" {
		return 0, err
	}
	w, err := status.ParseWord(s)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return w, nil
}
