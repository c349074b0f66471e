package console

import "github.com/charmbracelet/huh"

// ConfirmAction shows an interactive confirmation dialog, used before
// destructive clean operations. Returns true if the user confirms.
func ConfirmAction(title, affirmative, negative string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(affirmative).
				Negative(negative).
				Value(&confirmed),
		),
	).WithAccessible(isAccessibleMode())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}
