package main

import (
	"fmt"
	"strings"

	"evolog/internal/ops"
	"evolog/internal/plane"

	"github.com/spf13/cobra"
)

func newAppendCmd(g *globalFlags) *cobra.Command {
	appendCmd := &cobra.Command{
		Use:   "append",
		Short: "Record a new edit on top of the cursor",
	}

	// record appends op, saves the session and prints the new commit
	record := func(cmd *cobra.Command, op ops.Operation) error {
		s, err := g.open()
		if err != nil {
			return err
		}
		s.log.Append(op)
		if err := s.save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.log.Head().PrettyPrint())
		return nil
	}

	var preset string
	var origin []float64
	planeCmd := &cobra.Command{
		Use:   "plane <name>",
		Short: "Introduce a reference plane",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p plane.Plane
			switch strings.ToLower(preset) {
			case "xy":
				p = plane.XY()
			case "yz":
				p = plane.YZ()
			case "xz":
				p = plane.XZ()
			default:
				return fmt.Errorf("unknown plane preset %q (want xy, yz or xz)", preset)
			}
			if len(origin) != 0 {
				if len(origin) != 3 {
					return fmt.Errorf("--origin takes three values, got %d", len(origin))
				}
				p.Origin = plane.Vector3{X: origin[0], Y: origin[1], Z: origin[2]}
			}
			return record(cmd, ops.NewPlane{Name: args[0], Plane: p})
		},
	}
	planeCmd.Flags().StringVar(&preset, "preset", "xy", "Axis preset: xy, yz or xz")
	planeCmd.Flags().Float64SliceVar(&origin, "origin", nil, "Plane origin as x,y,z")

	var sketchPlane, sketchID string
	sketchCmd := &cobra.Command{
		Use:   "sketch <name>",
		Short: "Introduce a sketch on a plane",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sketchPlane == "" {
				return fmt.Errorf("use --plane to name the sketch plane")
			}
			id := sketchID
			if id == "" {
				id = args[0]
			}
			return record(cmd, ops.NewSketch{Name: args[0], PlaneName: sketchPlane, UniqueID: id})
		},
	}
	sketchCmd.Flags().StringVar(&sketchPlane, "plane", "", "Name of the plane to sketch on")
	sketchCmd.Flags().StringVar(&sketchID, "id", "", "Unique id (defaults to the name)")

	var rect ops.NewRectangle
	rectangleCmd := &cobra.Command{
		Use:   "rectangle <sketch-id>",
		Short: "Add a rectangle to a sketch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rect.SketchID = args[0]
			return record(cmd, rect)
		},
	}
	rectangleCmd.Flags().Float64Var(&rect.X, "x", 0, "Corner x")
	rectangleCmd.Flags().Float64Var(&rect.Y, "y", 0, "Corner y")
	rectangleCmd.Flags().Float64Var(&rect.Width, "width", 1, "Width")
	rectangleCmd.Flags().Float64Var(&rect.Height, "height", 1, "Height")

	var circle ops.NewCircle
	circleCmd := &cobra.Command{
		Use:   "circle <sketch-id>",
		Short: "Add a circle to a sketch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			circle.SketchID = args[0]
			return record(cmd, circle)
		},
	}
	circleCmd.Flags().Float64Var(&circle.X, "x", 0, "Center x")
	circleCmd.Flags().Float64Var(&circle.Y, "y", 0, "Center y")
	circleCmd.Flags().Float64Var(&circle.Radius, "radius", 1, "Radius")

	var ext ops.NewExtrusion
	extrusionCmd := &cobra.Command{
		Use:   "extrusion <name> <sketch-id>",
		Short: "Extrude a sketch into a solid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext.Name, ext.SketchID = args[0], args[1]
			if ext.UniqueID == "" {
				ext.UniqueID = ext.Name
			}
			return record(cmd, ext)
		},
	}
	extrusionCmd.Flags().StringVar(&ext.UniqueID, "id", "", "Unique id (defaults to the name)")
	extrusionCmd.Flags().Float64Var(&ext.ClickX, "click-x", 0, "Picked point x")
	extrusionCmd.Flags().Float64Var(&ext.ClickY, "click-y", 0, "Picked point y")
	extrusionCmd.Flags().Float64Var(&ext.Depth, "depth", 1, "Extrusion depth")

	var depth float64
	depthCmd := &cobra.Command{
		Use:   "depth <extrusion-id>",
		Short: "Change the depth of an extrusion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("depth") {
				return fmt.Errorf("use --depth to give the new depth")
			}
			return record(cmd, ops.ModifyExtrusionDepth{UniqueID: args[0], Depth: depth})
		},
	}
	depthCmd.Flags().Float64Var(&depth, "depth", 0, "New depth")

	describeCmd := &cobra.Command{
		Use:   "describe <commit> <text>",
		Short: "Annotate a commit with a description",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open()
			if err != nil {
				return err
			}
			target, err := s.log.Resolve(args[0])
			if err != nil {
				return err
			}
			s.log.Append(ops.Describe{Description: strings.Join(args[1:], " "), Commit: target})
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.log.Head().PrettyPrint())
			return nil
		},
	}

	appendCmd.AddCommand(planeCmd, sketchCmd, rectangleCmd, circleCmd, extrusionCmd, depthCmd, describeCmd)
	return appendCmd
}
