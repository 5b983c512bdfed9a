package coldplate

// Confirmer approves operations which reboot the device.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc is func form of Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Predefined confirmers.
var (
	AlwaysConfirm = ConfirmFunc(func(string) bool { return true })
	NeverConfirm  = ConfirmFunc(func(string) bool { return false })
)
