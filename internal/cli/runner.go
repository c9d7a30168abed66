// Package cli runs one-shot taskview subcommands against the task API.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Makepad-fr/taskview/internal/api"
	"github.com/Makepad-fr/taskview/internal/model"
	"github.com/Makepad-fr/taskview/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group  bool // list grouped by pending/done
	Stdout io.Writer
	Stderr io.Writer
}

type runner struct {
	ctx    context.Context
	svc    api.Service
	opt    Options
	stdout io.Writer
	stderr io.Writer
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, svc api.Service, opt Options) int {
	r := &runner{ctx: ctx, svc: svc, opt: opt, stdout: opt.Stdout, stderr: opt.Stderr}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}

	if len(args) == 0 {
		PrintHelp(r.stderr)
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(r.stdout)
		return 0

	case "ls":
		return r.list()

	case "add":
		if len(a) == 0 {
			ui.Fail(r.stderr, "usage: taskview add <text...>")
			return 2
		}
		return r.add(strings.Join(a, " "))

	case "done", "rm":
		if len(a) != 1 {
			ui.Fail(r.stderr, "usage: taskview "+cmd+" <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail(r.stderr, cmd+": not a number: "+a[0])
			return 2
		}
		if cmd == "done" {
			return r.toggle(n)
		}
		return r.remove(n)
	}

	ui.Fail(r.stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(r.stderr)
	PrintHelp(r.stderr)
	return 2
}

// PrintHelp writes usage to w.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `taskview - a minimal to-do client

Usage:
  taskview [flags]               Open the interactive list
  taskview [flags] <subcommand>  Run one command and exit

Subcommands:
  add <text...>      Add a new task (text can be multiple words)
  ls                 List tasks
  done <index>       Toggle completion for task at 1-based index
  rm <index>         Remove task at 1-based index

Examples:
  taskview add "Buy milk"
  taskview ls --group
  taskview done 2
  taskview --api-url http://todo.internal:15000 rm 3
`)
}

// -------------- subcommand impls ----------------

func (r *runner) list() int {
	tasks, err := r.svc.List(r.ctx)
	if err != nil {
		ui.Fail(r.stderr, "list: "+err.Error())
		return 1
	}

	th := ui.Current()
	d, p := stats(tasks)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		th.Title.Render("Todos"),
		th.Success.Render(th.SymDone), d,
		th.Pending.Render(th.SymPending), p,
		th.Accent.Render("Total"), len(tasks),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, th.Muted.Render(ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if r.opt.Group {
		lines = append(lines, groupLines(tasks)...)
	} else {
		lines = append(lines, flatLines(tasks)...)
	}
	lines = append(lines, "")
	lines = append(lines, th.Muted.Render("Tip: add with `taskview add \"Buy milk\"`"))
	ui.Panel(r.stdout, lines)
	return 0
}

func (r *runner) add(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		ui.Fail(r.stderr, "add: empty text")
		return 2
	}
	if err := r.svc.Create(r.ctx, model.NewTask(text)); err != nil {
		ui.Fail(r.stderr, "add: "+err.Error())
		return 1
	}
	ui.OK(r.stdout, "added")
	return r.list()
}

func (r *runner) toggle(userIndex int) int {
	task, code := r.at(userIndex)
	if code != 0 {
		return code
	}
	if err := r.svc.Update(r.ctx, task.Toggled()); err != nil {
		ui.Fail(r.stderr, "done: "+err.Error())
		return 1
	}
	ui.OK(r.stdout, "toggled")
	return 0
}

func (r *runner) remove(userIndex int) int {
	task, code := r.at(userIndex)
	if code != 0 {
		return code
	}
	if err := r.svc.Delete(r.ctx, task.ID); err != nil {
		ui.Fail(r.stderr, "rm: "+err.Error())
		return 1
	}
	ui.OK(r.stdout, "removed")
	return 0
}

// at fetches the collection and resolves a 1-based index against server
// order.
func (r *runner) at(userIndex int) (model.Task, int) {
	tasks, err := r.svc.List(r.ctx)
	if err != nil {
		ui.Fail(r.stderr, "list: "+err.Error())
		return model.Task{}, 1
	}
	if userIndex < 1 || userIndex > len(tasks) {
		ui.Fail(r.stderr, fmt.Sprintf("index out of range: have %d, got %d", len(tasks), userIndex))
		fmt.Fprintln(r.stderr, ui.Current().Muted.Render("Hint: run `taskview ls` to see valid indexes"))
		return model.Task{}, 2
	}
	return tasks[userIndex-1], 0
}

// -------------- rendering helpers --------------

func stats(tasks []model.Task) (done, pending int) {
	for _, t := range tasks {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

func flatLines(tasks []model.Task) []string {
	if len(tasks) == 0 {
		return []string{ui.Current().Muted.Render("no tasks")}
	}
	th := ui.Current()
	out := make([]string, 0, len(tasks))
	for i, t := range tasks {
		idx := fmt.Sprintf("%2d.", i+1)
		box, style := th.BoxUnchecked, th.Muted
		if t.Completed {
			box, style = th.BoxChecked, th.Success
		}
		text := t.Text
		if r := []rune(text); len(r) > 80 {
			text = string(r[:77]) + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s", th.Muted.Render(idx), style.Render(box), text))
	}
	return out
}

func groupLines(tasks []model.Task) []string {
	var pend, done []model.Task
	for _, t := range tasks {
		if t.Completed {
			done = append(done, t)
		} else {
			pend = append(pend, t)
		}
	}
	th := ui.Current()
	var lines []string
	lines = append(lines, th.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, th.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, th.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, th.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
