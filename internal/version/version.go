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

// Package version holds build information set via -ldflags.
package version

// Version of the binary, e.g. -ldflags "-X dnssec-operator.io/dnssec-operator/internal/version.Version=v0.1.0"
var Version = "dev"

// Commit the binary was built from.
var Commit = "unknown"
