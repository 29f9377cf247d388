// Package i18n provides the backoffice string tables.
//
// Tables live in locales/<code>.yaml as flat dotted keys and are embedded
// at build time. French is the fallback for keys a language lacks; Arabic
// renders right to left.
//
//	b := i18n.MustLoad()
//	b.T("en", "dashboard.welcome", "username", "admin") // "Welcome, admin"
package i18n
