// Copyright 2024 The gccl Authors
// This file is part of gccl.
//
// gccl is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gccl is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with gccl. If not, see <http://www.gnu.org/licenses/>.

// Package logging is the ambient structured-logging stack shared by every
// container: a package-level sugared zap logger, swappable for tests.
package logging

import "go.uber.org/zap"

var sugar = mustBuild()

func mustBuild() *zap.SugaredLogger {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	return l.Sugar()
}

// L returns the process-wide sugared logger.
func L() *zap.SugaredLogger { return sugar }

// SetLogger replaces the process-wide logger, returning the previous one.
// Tests use this to install zaptest/observer loggers.
func SetLogger(l *zap.SugaredLogger) *zap.SugaredLogger {
	old := sugar
	sugar = l
	return old
}
