package oscbank_test

import (
	"fmt"

	"github.com/oscbank/oscbank-go/pkg/oscbank"
)

func ExampleBank() {
	bank, err := oscbank.NewBank(4)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer bank.Close()

	if err := bank.Dispatch(); err != nil {
		fmt.Println(err)
		return
	}
	for _, s := range bank.Samples() {
		fmt.Printf("%.4f\n", s)
	}
	// Output:
	// 0.5000
	// 0.6237
	// 0.7397
	// 0.8408
}

func ExampleSampleAt() {
	u := oscbank.Uniforms{Time: 0, Freq: 1, OscillatorCount: 4}
	fmt.Printf("%.4f\n", oscbank.SampleAt(2, u))
	// Output:
	// 0.7397
}
