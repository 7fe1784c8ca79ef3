package question

import _ "embed"

// SampleSource names the embedded practice set in results and logs.
const SampleSource = "builtin:sample"

//go:embed sample.yml
var sampleYAML []byte

// Sample returns the embedded practice question set.
func Sample() (Bank, error) {
	bank, err := Parse(sampleYAML, "sample.yml")
	if err != nil {
		return Bank{}, err
	}
	bank.Source = SampleSource
	return bank, nil
}
