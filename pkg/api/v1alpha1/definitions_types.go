/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1alpha1

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultNodeCapacity is used for network entities without a RAM field
const DefaultNodeCapacity = 10.0

// DefaultModuleDemand is used for modules without a RAM field
const DefaultModuleDemand = 1.0

// ID is an identifier that may be written either as a JSON string or a JSON number
type ID string

// UnmarshalJSON accepts both "3" and 3
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Application is one distributed application made of modules exchanging messages
type Application struct {
	ID           ID             `json:"id"`
	Name         ID             `json:"name"`
	Modules      []Module       `json:"module"`
	Messages     []Message      `json:"message"`
	Transmission []Transmission `json:"transmission,omitempty"`
}

// Key returns the identifier used to index the application's modules
func (a Application) Key() string {
	if a.Name != "" {
		return string(a.Name)
	}
	return string(a.ID)
}

// Module is a deployable unit of an application
type Module struct {
	Name string   `json:"name"`
	RAM  *float64 `json:"RAM,omitempty"`
}

// Message is sent from module S to module D. S is "None" for messages emitted by users.
type Message struct {
	Name         string  `json:"name"`
	S            string  `json:"s"`
	D            string  `json:"d"`
	Instructions float64 `json:"instructions,omitempty"`
	Bytes        float64 `json:"bytes,omitempty"`
}

// Transmission describes how a module reacts to an incoming message
type Transmission struct {
	Module     string `json:"module"`
	MessageIn  string `json:"message_in"`
	MessageOut string `json:"message_out,omitempty"`
}

// NetworkDefinition is the topology: compute entities and the links between them
type NetworkDefinition struct {
	Entities []Entity `json:"entity"`
	Links    []Link   `json:"link,omitempty"`
}

// Entity is a node of the topology
type Entity struct {
	ID  int      `json:"id"`
	RAM *float64 `json:"RAM,omitempty"`
}

// Link connects two entities
type Link struct {
	S  int     `json:"s"`
	D  int     `json:"d"`
	PR float64 `json:"PR,omitempty"`
	BW float64 `json:"BW,omitempty"`
}

// UsersDefinition lists the traffic sources
type UsersDefinition struct {
	Sources []Source `json:"sources"`
}

// Source is a user generating Message towards App from entity IDResource
type Source struct {
	App        ID      `json:"app"`
	IDResource int     `json:"id_resource"`
	Message    string  `json:"message"`
	Lambda     float64 `json:"lambda,omitempty"`
}

// AllocationDefinition is the deployment document consumed by the simulator
type AllocationDefinition struct {
	InitialAllocation []Allocation `json:"initialAllocation"`
}

// Allocation places one replica of ModuleName of App on entity IDResource
type Allocation struct {
	ModuleName string `json:"module_name"`
	App        string `json:"app"`
	IDResource int    `json:"id_resource"`
}
