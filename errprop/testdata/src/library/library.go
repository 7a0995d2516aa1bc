package library

import "os"

// Touch has error chains but no main function to root them.
func Touch(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	return f.Close()
}
