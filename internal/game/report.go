package game

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// StateReport renders a textual snapshot of the gate, pipeline and
// state machines, for pasting into bug reports. Bound to a debug key in
// the game shell.
func StateReport(gate *ActionGate, pipe *InputPipeline, charge *ChargeMachine, aim *AimMachine) string {
	var b strings.Builder
	b.WriteString("--- Cannonade state report ---\n")

	s := gate.Current()
	if s == nil {
		b.WriteString("session: (none)\n")
	} else {
		fmt.Fprintf(&b, "session=%s roadmap=%s stage_index=%d\n", s.ID(), s.Roadmap().Name(), s.StageIndex())
		if st := s.CurrentStage(); st != nil {
			fmt.Fprintf(&b, "stage=%s allowed=%v\n", st.Name(), st.AllowedActions())
		} else {
			b.WriteString("stage=(none)\n")
		}
	}

	fmt.Fprintf(&b, "input: held=%v disabled=%v\n", pipe.Held(), pipe.DisabledActions())
	for _, d := range []Direction{DirLeft, DirRight} {
		if t, ok := pipe.LastDirectionPress(d); ok {
			fmt.Fprintf(&b, "input: last_%s=%s presses=%d\n", d, t.Format("15:04:05.000"), pipe.dirBufs[d].len())
		}
	}

	fmt.Fprintf(&b, "charge: state=%s power=%.2f\n", charge.State(), charge.Power())
	fmt.Fprintf(&b, "aim: current=%.1f target=%.1f aiming=%v\n", aim.CurrentAngle(), aim.TargetAngle(), aim.Aiming())

	return b.String()
}

// CopyStateReport puts the state report on the system clipboard.
func CopyStateReport(gate *ActionGate, pipe *InputPipeline, charge *ChargeMachine, aim *AimMachine) error {
	return clipboard.WriteAll(StateReport(gate, pipe, charge, aim))
}
