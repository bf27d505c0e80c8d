// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package auravant implements a client of the Auravant agricultural data API.
//
// API reference is at https://developers.auravant.com/docs/apis/reference/api_ref_gral/ .
//
// All the farms and fields of an account come in a single snapshot (the
// getfields endpoint), which Client flattens into tables of farms and fields,
// preserving the order in which the server lists them. The NDVI history of a
// field is fetched in full and filtered locally by an inclusive date range.
//
// Mutations (CreateFarm, AddField, DeleteField) return the decoded response
// body as is, so the caller can inspect any error the server reports in it.
// Read operations turn such errors into AuthError, NotFoundError, APIError or
// MalformedResponseError.
//
// MaxBiomass does not call the API. It summarizes a local CSV dataset produced
// by a separate ingestion script.
package auravant
