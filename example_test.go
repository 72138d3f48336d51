// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package polyglot_test

import (
	"fmt"

	"github.com/polyglot-codec/polyglot"
)

type WeatherReport struct {
	Region   string   `poly:"region"`
	Stations []string `poly:"stations"`
}

func Example() {
	report := WeatherReport{
		Region:   "pacific-northwest",
		Stations: []string{"ksea", "kpdx"},
	}

	// Encode once, to any of the four supported formats.
	data, err := polyglot.Marshal(report, polyglot.JSON, polyglot.WithPrettify(true))
	if err != nil {
		panic(err)
	}
	fmt.Println(string(data))

	// Decode back into the same type.
	var out WeatherReport
	out, err = polyglot.Unmarshal[WeatherReport](data, polyglot.JSON)
	if err != nil {
		panic(err)
	}
	fmt.Println(out.Region, out.Stations)

	// Output:
	// {
	//   "region": "pacific-northwest",
	//   "stations": [
	//     "ksea",
	//     "kpdx"
	//   ]
	// }
	// pacific-northwest [ksea kpdx]
}

func Example_lazy() {
	report := WeatherReport{Region: "pacific-northwest", Stations: []string{"ksea", "kpdx"}}
	data, err := polyglot.Marshal(report, polyglot.BEVE)
	if err != nil {
		panic(err)
	}

	// Navigate a BEVE document without decoding it in full.
	doc, err := polyglot.NewLazyDocument(data)
	if err != nil {
		panic(err)
	}
	region, ok := doc.Root().Field("region")
	if !ok {
		panic("missing region")
	}
	var s string
	if err := region.Decode(&s); err != nil {
		panic(err)
	}
	fmt.Println(s)

	// Output:
	// pacific-northwest
}
