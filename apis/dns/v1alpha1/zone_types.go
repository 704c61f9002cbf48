/*
Copyright 2021 The dnssec-operator authors.

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
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
)

// DNSSECZoneSpec declares an authoritative zone served by BIND.
type DNSSECZoneSpec struct {
	// DomainName of the zone, without trailing dot.
	DomainName string `json:"domainName"`
	// AdminContact is the responsible mailbox in SOA notation,
	// e.g. hostmaster.example.com.
	AdminContact string `json:"adminContact"`

	// SOA timing values in seconds.
	// Accepts integers and integer strings.
	TTLSeconds     intstr.IntOrString `json:"ttlSeconds"`
	RefreshSeconds intstr.IntOrString `json:"refreshSeconds"`
	RetrySeconds   intstr.IntOrString `json:"retrySeconds"`
	ExpireSeconds  intstr.IntOrString `json:"expireSeconds"`
	MinimumSeconds intstr.IntOrString `json:"minimumSeconds"`
}

// DNSSECZoneStatus records the provisioned TSIG key of a zone.
type DNSSECZoneStatus struct {
	KeyName         string `json:"keyName,omitempty"`
	DNSSECKey       string `json:"dnssecKey,omitempty"`
	DNSSECAlgorithm string `json:"dnssecAlgorithm,omitempty"`
	// Error of the last failed provisioning attempt.
	Error string `json:"error,omitempty"`
}

// HasKey returns true when all key fields are populated.
func (s DNSSECZoneStatus) HasKey() bool {
	return s.KeyName != "" && s.DNSSECKey != "" && s.DNSSECAlgorithm != ""
}

// DNSSECZone is the Schema for the dnsseczones API
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Domain",type="string",JSONPath=".spec.domainName"
// +kubebuilder:printcolumn:name="Key",type="string",JSONPath=".status.keyName"
// +kubebuilder:printcolumn:name="Error",type="string",JSONPath=".status.error"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"
type DNSSECZone struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DNSSECZoneSpec   `json:"spec"`
	Status DNSSECZoneStatus `json:"status,omitempty"`
}

// DNSSECZoneList contains a list of DNSSECZone
// +kubebuilder:object:root=true
type DNSSECZoneList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []DNSSECZone `json:"items"`
}

func init() {
	SchemeBuilder.Register(&DNSSECZone{}, &DNSSECZoneList{})
}
