package ovs

import "strings"

// Transaction accumulates ovs-vsctl sub-commands that are passed to a
// single invocation, so the database update is all-or-nothing.
type Transaction struct {
	args []string
}

// NewTransaction starts a transaction with its first sub-command
func NewTransaction(cmd ...string) *Transaction {
	t := &Transaction{}
	t.args = append(t.args, cmd...)
	return t
}

// Then appends a sub-command, delimited from the previous one by the
// atomic separator
func (t *Transaction) Then(cmd ...string) *Transaction {
	t.args = append(t.args, AtomicSeparator.String())
	t.args = append(t.args, cmd...)
	return t
}

// Append extends the current sub-command with more arguments
func (t *Transaction) Append(args ...string) *Transaction {
	t.args = append(t.args, args...)
	return t
}

// Args returns the argument vector for ovs-vsctl
func (t *Transaction) Args() []string {
	out := make([]string, len(t.args))
	copy(out, t.args)
	return out
}

func (t *Transaction) String() string {
	return strings.Join(t.args, " ")
}
