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

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/ibforce/InputParameters"
	"github.com/notargets/ibforce/model_problems/ForceBalance"
)

type ModelForce struct {
	ICFile      string
	RestartDir  string
	RestartStep int
	Parallel    int
	Profile     bool
	Verbose     bool
}

// ForceCmd represents the force command
var ForceCmd = &cobra.Command{
	Use:   "force",
	Short: "Evaluate control volume forces on the bodies of an input file",
	Long: `
Builds the grid hierarchy and analytic flow described in the input file and
reports the force and torque on every structure at each step,

ibforce force -I input.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		mf := &ModelForce{}
		if mf.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		mf.RestartDir = viper.GetString("restartDir")
		mf.RestartStep = viper.GetInt("restartStep")
		mf.Parallel = viper.GetInt("parallel")
		mf.Profile, _ = cmd.Flags().GetBool("profile")
		mf.Verbose, _ = cmd.Flags().GetBool("verbose")
		ip, err := processInput(mf)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		if mf.Profile {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}
		if err = RunForce(mf, ip); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

const exampleFile = `
########################################
Title: "Box in a channel"
Dim: 2
Rho: 1.
Mu: 0.01
DomainLower: [0, 0]
DomainUpper: [2, 1]
CoarseCells: [32, 16]
Boundaries: [periodic, wall]
Levels:
  - Ratio: [2, 2]
    Boxes:
      - Lower: [16, 8]
        Upper: [31, 23]
Structures:
  - ID: 0
    BoxLower: [0.5, 0.25]
    BoxUpper: [1.0, 0.75]
    BoxVelocity: [0.1, 0]
    Mass: 2.5
Flow:
  Type: uniform # Can be quiescent, shear or pressure_gradient
  U: [1, 0]
  P0: 1.
Dt: 0.01
Steps: 100
RestartInterval: 50
RestartDir: ~/ibforce_restart
########################################
`

func processInput(mf *ModelForce) (ip *InputParameters.ForceInputParameters, err error) {
	if len(mf.ICFile) == 0 {
		fmt.Printf("Example File:%s\n", exampleFile)
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		return
	}
	var data []byte
	if data, err = os.ReadFile(mf.ICFile); err != nil {
		return
	}
	ip = &InputParameters.ForceInputParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, err
	}
	if err = ip.Validate(); err != nil {
		return nil, err
	}
	return
}

func init() {
	rootCmd.AddCommand(ForceCmd)
	ForceCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Domain and levels\n\t- Structures and their boxes")
	ForceCmd.Flags().String("restartDir", "", "directory for restart files, overrides RestartDir of the input")
	ForceCmd.Flags().Int("restartStep", 0, "restart from the checkpoint written at this step")
	ForceCmd.Flags().IntP("parallel", "p", 0, "number of go routines, overrides ParallelDegree of the input")
	ForceCmd.Flags().Bool("profile", false, "write a CPU profile to the current directory")
	ForceCmd.Flags().BoolP("verbose", "v", false, "report face weight rebuilds")
	for _, name := range []string{"restartDir", "restartStep", "parallel"} {
		if err := viper.BindPFlag(name, ForceCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func RunForce(mf *ModelForce, ip *InputParameters.ForceInputParameters) (err error) {
	ip.Print()
	var fd *ForceBalance.ForceDriver
	if fd, err = ForceBalance.NewForceDriver(ip, mf.Parallel, mf.RestartDir, mf.RestartStep, mf.Verbose); err != nil {
		return
	}
	return fd.Run()
}
