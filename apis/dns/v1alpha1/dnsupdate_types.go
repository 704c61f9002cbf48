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
)

// RecordType represents the DNS record type.
type RecordType string

// RecordType values.
const (
	RecordTypeA     RecordType = "A"
	RecordTypeAAAA  RecordType = "AAAA"
	RecordTypeTXT   RecordType = "TXT"
	RecordTypeCName RecordType = "CNAME"
	RecordTypeNS    RecordType = "NS"
	RecordTypeMX    RecordType = "MX"
	RecordTypeSRV   RecordType = "SRV"
	RecordTypePTR   RecordType = "PTR"
)

// StaticRecord is a record with fixed contents.
type StaticRecord struct {
	// +kubebuilder:validation:Enum=A;AAAA;TXT;CNAME;NS;MX;SRV;PTR
	Type RecordType `json:"type"`
	// Contents in zone file presentation format, e.g. "10 mail.example.com." for MX.
	Contents string `json:"contents"`
}

// ServiceReference points to a Service whose load balancer
// ingress addresses become A/AAAA records.
type ServiceReference struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
}

// UpdateRecord is a single name to publish.
// Exactly one of Record and Service must be set.
type UpdateRecord struct {
	// Name that this record belongs to.
	Name string `json:"name"`
	// TTL in seconds.
	TTL     int               `json:"ttl"`
	Record  *StaticRecord     `json:"record,omitempty"`
	Service *ServiceReference `json:"service,omitempty"`
}

// DNSUpdateSpec lists records to keep published on a remote server.
type DNSUpdateSpec struct {
	// DNSServer receiving the dynamic updates, IP address or host name.
	DNSServer string `json:"dnsserver"`
	// KeyString in nsupdate -y format: [alg:]name:secret
	KeyString string         `json:"keystring"`
	Records   []UpdateRecord `json:"records"`
}

// DNSUpdate is the Schema for the dnsupdates API
// +kubebuilder:object:root=true
// +kubebuilder:printcolumn:name="Server",type="string",JSONPath=".spec.dnsserver"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"
type DNSUpdate struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec DNSUpdateSpec `json:"spec"`
}

// DNSUpdateList contains a list of DNSUpdate
// +kubebuilder:object:root=true
type DNSUpdateList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []DNSUpdate `json:"items"`
}

func init() {
	SchemeBuilder.Register(&DNSUpdate{}, &DNSUpdateList{})
}
