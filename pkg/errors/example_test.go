package errors_test

import (
	"fmt"
	"os"

	"multicompile/pkg/errors"
)

func ExampleWrapf() {
	_, statErr := os.Stat("/nonexistent/starknet-sierra-compile")
	err := errors.Wrapf(statErr, errors.BinaryNotFound, "compiler binary %s", "/nonexistent/starknet-sierra-compile").
		WithDetail("path", "/nonexistent/starknet-sierra-compile")

	fmt.Println(errors.GetCode(err) == errors.BinaryNotFound)
	fmt.Println(errors.GetCode(err).ExitCode())
	// Output:
	// true
	// 4
}

func ExampleInternal() {
	err := errors.Internal("native compiler exited successfully but wrote no artifact").
		WithDetail("path", "/tmp/multicompile-native-1")

	fmt.Println(err)
	fmt.Println(errors.Is(err, errors.UnexpectedError))
	// Output:
	// native compiler exited successfully but wrote no artifact
	// true
}
