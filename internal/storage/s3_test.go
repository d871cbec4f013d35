// Copyright (c) 2026 Rick Henry
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import "testing"

// TestObjectURL verifies the public URL shape for uploaded objects.
func TestObjectURL(t *testing.T) {
	got := objectURL("my-bucket", "us-east-1", "abc/2024-01-02-report.pdf")
	want := "https://my-bucket.s3.us-east-1.amazonaws.com/abc/2024-01-02-report.pdf"
	if got != want {
		t.Errorf("objectURL = %q, want %q", got, want)
	}
}
