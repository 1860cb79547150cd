/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Tabula Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package demo

import (
	"fmt"
	"time"
)

// Opportunity generation settings
const (
	NumOpportunities = 5_000
	numAccounts      = 240
	numOwners        = 12
)

// Opportunity is a sales opportunity in the pipeline.
type Opportunity struct {
	ID          string
	Account     string
	Stage       string
	Owner       string
	Value       float64
	Probability int // percent
	CloseDate   time.Time
}

var (
	opportunityStages = []string{"prospecting", "qualification", "proposal", "negotiation", "won", "lost"}
	stageProbability  = map[string]int{"prospecting": 10, "qualification": 25, "proposal": 50, "negotiation": 75, "won": 100, "lost": 0}
	accountPrefixes   = []string{"Acme", "Globex", "Initech", "Umbrella", "Hooli", "Soylent", "Cyberdyne", "Tyrell"}
	accountSuffixes   = []string{"Corp", "Labs", "Group", "Holdings", "Systems", "Partners"}
)

// GenerateOpportunities creates n opportunities. The output only depends on
// n so screens and tests see the same pipeline on every run.
func GenerateOpportunities(n int) []Opportunity {
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	out := make([]Opportunity, n)
	for i := range out {
		// Account: moderate reuse
		a := i % numAccounts
		account := fmt.Sprintf("%s %s %d", accountPrefixes[a%len(accountPrefixes)], accountSuffixes[a%len(accountSuffixes)], a/len(accountPrefixes)+1)

		// Stage: every 7th opportunity is still prospecting
		stage := opportunityStages[i%len(opportunityStages)]
		if i%7 == 0 {
			stage = "prospecting"
		}

		out[i] = Opportunity{
			ID:          fmt.Sprintf("OPP-%05d", i+1),
			Account:     account,
			Stage:       stage,
			Owner:       fmt.Sprintf("rep%02d", i%numOwners+1),
			Value:       float64(1_000 + (i*7919)%99_000),
			Probability: stageProbability[stage],
			CloseDate:   base.AddDate(0, 0, (i*13)%365),
		}
	}
	return out
}
