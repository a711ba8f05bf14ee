/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wme7/FVENS/InputParameters"
	"github.com/wme7/FVENS/mesh"
	"github.com/wme7/FVENS/solver"
	"github.com/wme7/FVENS/spatial"
)

const nvars = 4

// Built-in channel mesh boundary markers used by the steady command.
const (
	markerBottom = 1
	markerTop    = 2
	markerInlet  = 3
	markerOutlet = 4
)

// steadyCmd runs the steady solver on a generated channel mesh. Mesh file
// ingestion lives outside this module; the demo geometry is a channel with
// an optional Gaussian bump on the bottom wall.
var steadyCmd = &cobra.Command{
	Use:   "steady",
	Short: "Solve a steady flow over a channel with an optional Gaussian bump",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		cfgFile, _ := cmd.Flags().GetString("controlFile")
		nx, _ := cmd.Flags().GetInt("nx")
		ny, _ := cmd.Flags().GetInt("ny")
		bump, _ := cmd.Flags().GetFloat64("bumpHeight")
		tris, _ := cmd.Flags().GetBool("triangles")

		if len(cfgFile) == 0 {
			fmt.Println("error: must supply a control file (-I, --controlFile) in YAML format")
			exampleFile := `
########################################
Title: "Gaussian bump"
FlowKind: euler
Minf: 0.5
Alpha: 0.
InviscidFlux: ROE
Gradient: LEASTSQUARES
Limiter: NONE
SecondOrder: true
CFL: 10.
CFLMax: 1000.
Tolerance: 1.e-6
MaxIterations: 500
ImplicitSolver: true
BCs:
  - Marker: 1
    Type: slipwall
  - Marker: 2
    Type: slipwall
  - Marker: 3
    Type: inoutflow
  - Marker: 4
    Type: inoutflow
########################################
`
			fmt.Printf("Example File:%s\n", exampleFile)
			os.Exit(1)
		}

		var data []byte
		if data, err = os.ReadFile(cfgFile); err != nil {
			log.Fatal(err)
		}
		ip := &InputParameters.FlowParameters2D{}
		if err = ip.Parse(data); err != nil {
			log.Fatal(err)
		}
		ip.Print()

		var bumpFn func(float64) float64
		if bump > 0 {
			bumpFn = mesh.GaussianBump(bump, 1.5, 0.3)
		}
		msh, err := mesh.NewChannel(mesh.ChannelSpec{
			Nx: nx, Ny: ny,
			X0: 0, X1: 3, Y0: 0, Y1: 1,
			Bump: bumpFn,
			Markers: mesh.ChannelMarkers{
				Bottom: markerBottom, Top: markerTop,
				Inlet: markerInlet, Outlet: markerOutlet,
			},
			Triangles:      tris,
			PeriodicMarker: -1,
		})
		if err != nil {
			log.Fatal(err)
		}
		log.Infof("channel mesh: %d cells, %d faces (%d boundary)",
			msh.NElem(), msh.NFace(), msh.NBFace())

		eng, err := spatial.NewEngine(msh, ip.Gas(), ip.EngineConfig())
		if err != nil {
			log.Fatal(err)
		}

		u := make([]float64, msh.NElem()*nvars)
		eng.InitializeUnknowns(u)

		scfg := solver.Config{
			CFL: ip.CFL, CFLMax: ip.CFLMax,
			Tol: ip.Tolerance, MaxIter: ip.MaxIterations,
			LogEvery: 10,
		}
		var hist *solver.History
		if ip.ImplicitSolver {
			hist, err = (&solver.SteadyImplicit{Eng: eng, Cfg: scfg}).Solve(u)
		} else {
			hist, err = (&solver.SteadyExplicit{Eng: eng, Cfg: scfg}).Solve(u)
		}
		if err != nil {
			log.Fatal(err)
		}
		log.Infof("steady solve: %d steps, converged=%v", hist.Steps, hist.Converged)

		grads := make([]float64, msh.NElem()*2*nvars)
		if err = eng.Gradients(u, grads); err != nil {
			log.Fatal(err)
		}
		sd := eng.ComputeSurfaceData(u, grads, markerBottom)
		log.Infof("bottom wall: Cl = %10.6f  Cdp = %10.6f  Cdf = %10.6f",
			sd.Cl, sd.Cdp, sd.Cdf)
	},
}

func init() {
	rootCmd.AddCommand(steadyCmd)
	steadyCmd.Flags().StringP("controlFile", "I", "", "YAML control file with flow and numerics parameters")
	steadyCmd.Flags().Int("nx", 60, "cells along the channel")
	steadyCmd.Flags().Int("ny", 20, "cells across the channel")
	steadyCmd.Flags().Float64("bumpHeight", 0.0625, "height of the Gaussian bump on the bottom wall")
	steadyCmd.Flags().Bool("triangles", false, "split quads into triangles")
}
