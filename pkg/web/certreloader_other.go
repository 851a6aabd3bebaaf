//go:build !unix

package web

import "context"

func (cr *CertReloader) watch(context.Context) {}
