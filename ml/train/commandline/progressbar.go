// Package commandline contains helpers to display training progress on the
// command line.
package commandline

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/gomlx/learnfn/ml/train"
)

// progressBar holds a progressbar being displayed for a training loop.
type progressBar struct {
	numSteps         int
	lastStepReported int
	bar              *progressbar.ProgressBar
	suffix           string
}

// Write implements io.Writer, and appends the current suffix with the loss
// to each line. It is used as the writer for the enclosed
// progressbar.ProgressBar, so the bar and its suffix are written in one
// write operation.
func (pBar *progressBar) Write(data []byte) (n int, err error) {
	newData := append(data, []byte(pBar.suffix)...)
	n, err = os.Stdout.Write(newData)
	if err == nil {
		n = len(data)
	}
	return
}

func onStart[M train.Trainable[M, S], S any](pBar *progressBar) train.OnStartFn[M, S] {
	return func(loop *train.Loop[M, S]) error {
		pBar.lastStepReported = loop.LoopStep
		var stepsMsg string
		if loop.EndStep < 0 {
			pBar.numSteps = 1000 // Guess for now.
		} else {
			pBar.numSteps = loop.EndStep - loop.StartStep
			stepsMsg = fmt.Sprintf(" (%s steps)", humanize.Comma(int64(pBar.numSteps)))
		}
		pBar.bar = progressbar.NewOptions(pBar.numSteps,
			progressbar.OptionSetDescription(fmt.Sprintf("Training%s: ", stepsMsg)),
			progressbar.OptionUseANSICodes(true),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("steps"),
			progressbar.OptionSetTheme(progressbar.ThemeUnicode),
			progressbar.OptionSetWriter(pBar),
		)
		return nil
	}
}

func onStep[M train.Trainable[M, S], S any](pBar *progressBar) train.OnStepFn[M, S] {
	return func(loop *train.Loop[M, S], loss float64) error {
		if pBar.bar.IsFinished() {
			return nil
		}
		// +1 because the current LoopStep is finished.
		amount := loop.LoopStep + 1 - pBar.lastStepReported
		if amount <= 0 {
			return nil
		}
		pBar.suffix = fmt.Sprintf(" [step=%d] [loss=%.6g]        ", loop.LoopStep, loss)
		pBar.lastStepReported = loop.LoopStep + 1
		return pBar.bar.Add(amount)
	}
}

func onEnd[M train.Trainable[M, S], S any](pBar *progressBar) train.OnEndFn[M, S] {
	return func(loop *train.Loop[M, S], loss float64) error {
		err := pBar.bar.Finish()
		fmt.Println()
		return err
	}
}

// AttachProgressBar attaches a command-line progress bar to the training
// loop, displaying steps per second and the latest batch loss.
func AttachProgressBar[M train.Trainable[M, S], S any](loop *train.Loop[M, S]) {
	pBar := &progressBar{}
	loop.OnStart("progressbar", onStart[M, S](pBar))
	loop.OnStep("progressbar", onStep[M, S](pBar))
	loop.OnEnd("progressbar", onEnd[M, S](pBar))
}
