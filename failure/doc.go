// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package failure classifies the errors that end a query, for example
// to bucket failure metrics or to phrase a message for a user. It looks
// through wrapped causes, so a *url.Error wrapping a syscall error is
// classified by the syscall error.
package failure
