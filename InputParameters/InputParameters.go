package InputParameters

import (
	"fmt"
	"math"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/wme7/FVENS/bcond"
	"github.com/wme7/FVENS/physics"
	"github.com/wme7/FVENS/spatial"
	"github.com/wme7/FVENS/utils"
)

// Parameters obtained from the YAML control file
type FlowParameters2D struct {
	Title    string `yaml:"Title"`
	FlowKind string `yaml:"FlowKind"` // "euler" or "navier-stokes"

	Gamma float64 `yaml:"Gamma"`
	Minf  float64 `yaml:"Minf"`
	Reinf float64 `yaml:"Reinf"`
	Tinf  float64 `yaml:"Tinf"` // Kelvin, for the Sutherland law
	Pr    float64 `yaml:"Pr"`
	Alpha float64 `yaml:"Alpha"` // angle of attack in degrees

	InviscidFlux string  `yaml:"InviscidFlux"`
	JacobianFlux string  `yaml:"JacobianFlux"`
	Gradient     string  `yaml:"Gradient"`
	Limiter      string  `yaml:"Limiter"`
	LimiterParam float64 `yaml:"LimiterParam"`
	EntropyFix   float64 `yaml:"EntropyFix"`

	ConstantViscosity bool `yaml:"ConstantViscosity"`
	SecondOrder       bool `yaml:"SecondOrder"`

	CFL            float64 `yaml:"CFL"`
	CFLMax         float64 `yaml:"CFLMax"`
	Tolerance      float64 `yaml:"Tolerance"`
	MaxIterations  int     `yaml:"MaxIterations"`
	ImplicitSolver bool    `yaml:"ImplicitSolver"`

	BCs []bcond.Config `yaml:"BCs"`
}

var fluxNames = map[string]bool{
	"LLF": true, "VANLEER": true, "AUSM": true, "AUSMPLUS": true,
	"ROE": true, "HLL": true, "HLLC": true,
}

var gradientNames = map[string]bool{
	"": true, "NONE": true, "GREENGAUSS": true, "LEASTSQUARES": true,
}

var limiterNames = map[string]bool{
	"": true, "NONE": true, "VANALBADA": true, "BARTHJESPERSEN": true,
	"VENKATAKRISHNAN": true, "WENO": true,
}

func (ip *FlowParameters2D) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return fmt.Errorf("%v: %w", err, utils.ErrConfigInvalid)
	}
	return ip.Validate()
}

// Validate checks names and mutually exclusive options, applying defaults.
func (ip *FlowParameters2D) Validate() error {
	switch strings.ToLower(ip.FlowKind) {
	case "", "euler":
		ip.FlowKind = "euler"
	case "navier-stokes":
		ip.FlowKind = "navier-stokes"
	default:
		return fmt.Errorf("unknown flow kind %q: %w", ip.FlowKind, utils.ErrConfigInvalid)
	}

	if ip.Gamma == 0 {
		ip.Gamma = 1.4
	}
	if ip.Pr == 0 {
		ip.Pr = 0.72
	}
	if ip.Tinf == 0 {
		ip.Tinf = 288.15
	}
	if ip.EntropyFix == 0 {
		ip.EntropyFix = 0.1
	}
	if ip.LimiterParam == 0 {
		ip.LimiterParam = 2.0
	}

	if !fluxNames[strings.ToUpper(ip.InviscidFlux)] {
		return fmt.Errorf("unknown inviscid flux %q: %w", ip.InviscidFlux, utils.ErrConfigInvalid)
	}
	if ip.JacobianFlux != "" && !fluxNames[strings.ToUpper(ip.JacobianFlux)] {
		return fmt.Errorf("unknown Jacobian flux %q: %w", ip.JacobianFlux, utils.ErrConfigInvalid)
	}
	if !gradientNames[strings.ToUpper(ip.Gradient)] {
		return fmt.Errorf("unknown gradient scheme %q: %w", ip.Gradient, utils.ErrConfigInvalid)
	}
	if !limiterNames[strings.ToUpper(ip.Limiter)] {
		return fmt.Errorf("unknown limiter %q: %w", ip.Limiter, utils.ErrConfigInvalid)
	}

	if ip.SecondOrder && (ip.Gradient == "" || strings.ToUpper(ip.Gradient) == "NONE") {
		return fmt.Errorf("second order requested without a gradient scheme: %w",
			utils.ErrConfigInvalid)
	}
	if ip.FlowKind == "navier-stokes" && ip.Reinf <= 0 {
		return fmt.Errorf("navier-stokes needs a positive Reynolds number: %w",
			utils.ErrConfigInvalid)
	}
	return nil
}

// Gas builds the gas model from the parameters.
func (ip *FlowParameters2D) Gas() *physics.IdealGas {
	return physics.NewIdealGas(ip.Gamma, ip.Minf, ip.Tinf, ip.Reinf, ip.Pr)
}

// EngineConfig builds the spatial engine configuration.
func (ip *FlowParameters2D) EngineConfig() spatial.Config {
	return spatial.Config{
		Alpha:          ip.Alpha * math.Pi / 180.0,
		Viscous:        ip.FlowKind == "navier-stokes",
		SecondOrder:    ip.SecondOrder,
		ConstVisc:      ip.ConstantViscosity,
		InviscidFlux:   ip.InviscidFlux,
		JacobianFlux:   ip.JacobianFlux,
		GradientScheme: ip.Gradient,
		Limiter:        ip.Limiter,
		LimiterParam:   ip.LimiterParam,
		EntropyFix:     ip.EntropyFix,
		BCs:            ip.BCs,
	}
}

func (ip *FlowParameters2D) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= Flow Kind\n", ip.FlowKind)
	fmt.Printf("%8.5f\t\t= Mach\n", ip.Minf)
	fmt.Printf("%8.5f\t\t= Alpha (deg)\n", ip.Alpha)
	fmt.Printf("%8.5f\t\t= CFL\n", ip.CFL)
	fmt.Printf("[%s]\t\t\t= Inviscid Flux\n", ip.InviscidFlux)
	fmt.Printf("[%s]\t\t= Gradient\n", ip.Gradient)
	fmt.Printf("[%s]\t\t= Limiter\n", ip.Limiter)
	for _, bc := range ip.BCs {
		fmt.Printf("BC[%d] = %s %v\n", bc.Marker, bc.Type, bc.Values)
	}
}
