package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imkarma/isc/internal/criteria"
)

var (
	createRequest string
	createEffort  string

	addDescription string
	addSource      string
	addParallel    bool

	rowFlag        string
	updateStatus   string
	capabilityName string
	verifyResult   string
	reasonFlag     string

	phaseName string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new criteria table",
	Long: `Creates a fresh table in phase OBSERVE, iteration 1, replacing the current one.
Run 'isc clear' first to keep an archive of the previous table.

Example:
  isc create -r "Add dark mode to settings" -e STANDARD`,
	RunE: runCreate,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a criterion row",
	RunE:  runAdd,
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a row's status",
	Long:  "Status: PENDING, ACTIVE, DONE, ADJUSTED, BLOCKED. A --reason is kept for ADJUSTED and BLOCKED.",
	RunE:  runUpdate,
}

var capabilityCmd = &cobra.Command{
	Use:   "capability",
	Short: "Assign a capability to a row",
	Long:  "Capability is category.name, e.g. research.perplexity, thinking.ultrathink, execution.engineer.",
	RunE:  runCapability,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Record a verification result for a row",
	Long:  "Result: PASS, ADJUSTED, BLOCKED. ADJUSTED and BLOCKED also set the row's status.",
	RunE:  runVerify,
}

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Set the current phase",
	RunE:  runPhase,
}

var iterateCmd = &cobra.Command{
	Use:   "iterate",
	Short: "Start the next iteration",
	RunE:  runIterate,
}

func init() {
	createCmd.Flags().StringVarP(&createRequest, "request", "r", "", "Request text")
	createCmd.Flags().StringVarP(&createEffort, "effort", "e", "", "Effort level (default from isc.yaml, STANDARD)")

	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Row description")
	addCmd.Flags().StringVarP(&addSource, "source", "s", "", "Source: EXPLICIT, INFERRED, IMPLICIT")
	addCmd.Flags().BoolVar(&addParallel, "parallel", true, "Row can run in parallel with others")

	for _, c := range []*cobra.Command{updateCmd, capabilityCmd, verifyCmd} {
		c.Flags().StringVar(&rowFlag, "row", "", "Row ID")
	}
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "New status")
	updateCmd.Flags().StringVar(&reasonFlag, "reason", "", "Reason for adjustment/block")
	capabilityCmd.Flags().StringVarP(&capabilityName, "capability", "c", "", "Capability, e.g. research.perplexity")
	verifyCmd.Flags().StringVar(&verifyResult, "result", "", "Verify result")
	verifyCmd.Flags().StringVar(&reasonFlag, "reason", "", "Reason for adjustment/block")

	phaseCmd.Flags().StringVarP(&phaseName, "phase", "p", "", "Phase name")
}

func runCreate(cmd *cobra.Command, args []string) error {
	if createRequest == "" {
		return fmt.Errorf("--request is required for create: %w", criteria.ErrInvalidArgument)
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	effort := createEffort
	if effort == "" {
		effort = s.cfg.Effort()
	}
	t, err := s.engine.Create(createRequest, effort)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ISC created for: %s\n", t.Request)
	fmt.Fprintf(out, "Effort: %s\n", t.Effort)
	fmt.Fprintf(out, "Saved to: %s\n", s.store.Path())
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, t, err := mustTable()
	if err != nil {
		return err
	}
	defer s.Close()

	if addDescription == "" {
		return fmt.Errorf("--description is required for add: %w", criteria.ErrInvalidArgument)
	}
	source := s.cfg.Source()
	if addSource != "" {
		if source, err = criteria.ParseSource(addSource); err != nil {
			return err
		}
	}

	row, err := s.engine.AddRow(t, addDescription, source, addParallel)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added row %d: %s (%s)\n", row.ID, row.Description, row.Source)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseRowID(rowFlag)
	if err != nil {
		return err
	}
	if updateStatus == "" {
		return fmt.Errorf("--status is required for update: %w", criteria.ErrInvalidArgument)
	}
	status, err := criteria.ParseStatus(updateStatus)
	if err != nil {
		return err
	}

	s, t, err := mustTable()
	if err != nil {
		return err
	}
	defer s.Close()

	row, err := s.engine.UpdateRowStatus(t, id, status, reasonFlag)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Row %d: %s\n", row.ID, row.Status)
	return nil
}

func runCapability(cmd *cobra.Command, args []string) error {
	id, err := parseRowID(rowFlag)
	if err != nil {
		return err
	}
	if capabilityName == "" {
		return fmt.Errorf("--capability is required (e.g. research.perplexity, thinking.ultrathink): %w", criteria.ErrInvalidArgument)
	}

	s, t, err := mustTable()
	if err != nil {
		return err
	}
	defer s.Close()

	row, err := s.engine.SetCapability(t, id, capabilityName)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Row %d: capability → %s (%s)\n", row.ID, row.Capability.Name(), row.Capability.Icon())
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	id, err := parseRowID(rowFlag)
	if err != nil {
		return err
	}
	if verifyResult == "" {
		return fmt.Errorf("--result is required for verify: %w", criteria.ErrInvalidArgument)
	}
	result, err := criteria.ParseVerifyResult(verifyResult)
	if err != nil {
		return err
	}

	s, t, err := mustTable()
	if err != nil {
		return err
	}
	defer s.Close()

	row, err := s.engine.SetVerifyResult(t, id, result, reasonFlag)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Row %d verified: %s (status %s)\n", row.ID, result, row.Status)
	return nil
}

func runPhase(cmd *cobra.Command, args []string) error {
	if phaseName == "" {
		return fmt.Errorf("--phase is required: %w", criteria.ErrInvalidArgument)
	}
	s, t, err := mustTable()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.engine.SetPhase(t, strings.ToUpper(phaseName)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Phase set to: %s\n", t.Phase)
	return nil
}

func runIterate(cmd *cobra.Command, args []string) error {
	s, t, err := mustTable()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.engine.IncrementIteration(t); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Now on iteration: %d\n", t.Iteration)
	return nil
}
