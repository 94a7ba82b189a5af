package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mjbridge/internal/client"
	"github.com/san-kum/mjbridge/internal/config"
	"github.com/san-kum/mjbridge/internal/definition"
	"github.com/san-kum/mjbridge/internal/routine"
	"github.com/san-kum/mjbridge/internal/script"
	"github.com/san-kum/mjbridge/internal/storage"
	"github.com/san-kum/mjbridge/internal/tui"
)

var (
	dataDir    string
	configFile string

	scriptPath string
	noSave     bool

	command string
	steps   string

	objectType string
	objectName string
	property   string
	index      string
	value      float64

	watchType     string
	watchName     string
	watchProperty string
	watchIndex    string
	frameRate     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mjbridge",
		Short: "simulation routine bridge with a builtin dynamics engine",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory for run traces")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	openCmd := &cobra.Command{
		Use:   "open [model]",
		Short: "validate and open a model file",
		Args:  cobra.ExactArgs(1),
		RunE:  openModel,
	}

	definitionCmd := &cobra.Command{
		Use:   "definition",
		Short: "print the simulator definition as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(definition.Get())
		},
	}

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a routine script against a model",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	runCmd.Flags().StringVar(&scriptPath, "script", "", "routine script path (yaml)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run trace")
	runCmd.MarkFlagRequired("script")

	execCmd := &cobra.Command{
		Use:   "exec [model]",
		Short: "execute a single simulation command",
		Args:  cobra.ExactArgs(1),
		RunE:  execCommand,
	}
	execCmd.Flags().StringVar(&command, "command", "step", "command (step, reset, forward, inverse)")
	execCmd.Flags().StringVar(&steps, "steps", "1", "number of steps for the step command")

	setCmd := &cobra.Command{
		Use:   "set [model]",
		Short: "set one input on a freshly opened model",
		Args:  cobra.ExactArgs(1),
		RunE:  setInput,
	}
	setCmd.Flags().StringVar(&objectType, "type", "", "object type (default actuator)")
	setCmd.Flags().StringVar(&objectName, "name", "", "object name")
	setCmd.Flags().StringVar(&property, "property", "", "property (default ctrl)")
	setCmd.Flags().StringVar(&index, "index", "", "optional array index")
	setCmd.Flags().Float64Var(&value, "value", 0, "value to set")

	getCmd := &cobra.Command{
		Use:   "get [model]",
		Short: "read one output from a freshly opened model",
		Args:  cobra.ExactArgs(1),
		RunE:  getOutput,
	}
	getCmd.Flags().StringVar(&objectType, "type", "", "object type (default sensor)")
	getCmd.Flags().StringVar(&objectName, "name", "", "object name")
	getCmd.Flags().StringVar(&property, "property", "", "property (default sensordata)")
	getCmd.Flags().StringVar(&index, "index", "", "optional array index")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "step the model live with a plotted output",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&watchType, "watch-type", "time", "object type of the watched output")
	liveCmd.Flags().StringVar(&watchName, "watch-name", "", "object name of the watched output")
	liveCmd.Flags().StringVar(&watchProperty, "watch-property", "", "property of the watched output")
	liveCmd.Flags().StringVar(&watchIndex, "watch-index", "", "index of the watched output")
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFrameRate, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run's outputs",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print connector and simulator versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New()
			if err := c.TestConnection(); err != nil {
				return err
			}
			fmt.Printf("connector: %s\n", client.ConnectorVersion)
			fmt.Printf("simulator: %s\n", c.SimulatorVersion())
			return nil
		},
	}

	rootCmd.AddCommand(openCmd, definitionCmd, runCmd, execCmd, setCmd, getCmd, liveCmd, listCmd, plotCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers the optional config file and environment over flag
// defaults. Explicitly set flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("data") || cmd.InheritedFlags().Changed("data") {
		cfg.DataDir = dataDir
	} else if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if cmd.Flags().Changed("fps") {
		cfg.FrameRate = frameRate
	}
	return cfg, nil
}

func openSession(path string) (*routine.Session, error) {
	c := client.New()
	if res := c.OpenModel(path); !res.Success {
		return nil, fmt.Errorf("%s", res.Error)
	}
	return c.Session()
}

func openModel(cmd *cobra.Command, args []string) error {
	c := client.New()
	res := c.OpenModel(args[0])

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("open failed: %s", res.Error)
	}

	sess, err := c.Session()
	if err != nil {
		return err
	}
	m := sess.Model()
	fmt.Printf("model: %s (timestep %.4gs)\n", m.Name, m.Timestep)
	fmt.Printf("bodies: %d  joints: %d  actuators: %d  sensors: %d\n",
		m.NBody(), m.NJoint(), m.NActuator(), m.NSensor())
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sess, err := openSession(args[0])
	if err != nil {
		return err
	}

	sc, err := script.Load(scriptPath)
	if err != nil {
		return err
	}

	fmt.Printf("running script %s against %s...\n", scriptPath, args[0])
	result, err := script.Run(sess, sc)
	if err != nil {
		return err
	}

	fmt.Printf("iterations: %d  steps: %d  time: %.4fs\n",
		len(result.Rows), sess.Steps(), sess.Time())

	if len(result.Rows) > 0 {
		last := result.Rows[len(result.Rows)-1]
		fmt.Println("\noutputs:")
		for _, name := range result.Names {
			fmt.Printf("  %s: %.6f\n", name, last.Values[name])
		}
	}

	if noSave {
		return nil
	}
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(args[0], sc.Name, sess.Model().Timestep, result)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func execCommand(cmd *cobra.Command, args []string) error {
	sess, err := openSession(args[0])
	if err != nil {
		return err
	}
	if err := sess.RunCommand(map[string]string{"command": command, "steps": steps}); err != nil {
		return err
	}
	fmt.Printf("command %s done (time %.4fs, steps %d)\n", command, sess.Time(), sess.Steps())
	return nil
}

func stepArgs(objType, name, prop, idx string) map[string]string {
	m := map[string]string{}
	if objType != "" {
		m["object_type"] = objType
	}
	if name != "" {
		m["object_name"] = name
	}
	if prop != "" {
		m["property"] = prop
	}
	if idx != "" {
		m["index"] = idx
	}
	return m
}

func setInput(cmd *cobra.Command, args []string) error {
	sess, err := openSession(args[0])
	if err != nil {
		return err
	}
	if err := sess.SetInput(stepArgs(objectType, objectName, property, index), value); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func getOutput(cmd *cobra.Command, args []string) error {
	sess, err := openSession(args[0])
	if err != nil {
		return err
	}
	// Derived quantities and sensors are only meaningful after a forward
	// pass, which session construction already performed.
	v, err := sess.GetOutput(stepArgs(objectType, objectName, property, index))
	if err != nil {
		return err
	}
	fmt.Printf("%.6f\n", v)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sess, err := openSession(args[0])
	if err != nil {
		return err
	}

	watch := stepArgs(watchType, watchName, watchProperty, watchIndex)
	m := tui.NewModel(sess, sess.Model().Name, watch, cfg.FrameRate)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCRIPT\tMODEL\tTIME\tSTEPS\tFINAL_T")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.4fs\n",
			run.ID,
			run.Script,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.FinalTime,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	names, _, series, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("script: %s  model: %s\n\n", meta.Script, meta.Model)

	for _, name := range names {
		data := series[name]
		if len(data) < 2 {
			fmt.Printf("%s: %v (too few samples to plot)\n", name, data)
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if len(names) == 0 {
		fmt.Println("no sampled outputs in this run")
	}
	return nil
}
