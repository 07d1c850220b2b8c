package frame_test

import (
	"errors"
	"fmt"

	"github.com/bft-labs/whisker/pkg/frame"
)

func ExampleDecode() {
	s, err := frame.Decode("0102030405060708 ignored")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("x=%04x y=%04x z=%04x\n", s.X, s.Y, s.Z)

	_, err = frame.Decode("0102 ")
	fmt.Println(errors.Is(err, frame.ErrUnderflow))

	// Output:
	// x=0203 y=0405 z=0607
	// true
}
