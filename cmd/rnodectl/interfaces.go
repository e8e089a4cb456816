package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// interfacesCmd represents the interfaces command
var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "Manage saved radio interface definitions",
}

var interfacesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved interfaces",
	RunE:  runInterfacesList,
}

var interfacesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved interface",
	Args:  cobra.ExactArgs(1),
	RunE:  runInterfacesDelete,
}

func init() {
	interfacesCmd.AddCommand(interfacesListCmd)
	interfacesCmd.AddCommand(interfacesDeleteCmd)
}

func runInterfacesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := resolveLogger(cmd, cfg)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	saved, err := st.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		fmt.Println("No saved interfaces")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDEVICE\tLINK\tFREQUENCY\tMODE\tENABLED")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, s := range saved {
		c := s.Config
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.3f MHz\t%s\t%t\n",
			s.ID, c.Name, c.TargetDevice, c.ConnectionMode,
			float64(c.Frequency)/1e6, c.Mode, c.Enabled)
	}
	return w.Flush()
}

func runInterfacesDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := resolveLogger(cmd, cfg)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid interface id %q", args[0])
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("Deleted interface %d\n", id)
	return nil
}
