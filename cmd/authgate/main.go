// Command authgate is a small authentication gateway: it protects routes
// with OAuth2 logins and keeps profiles in a pluggable session store.
package main

import "github.com/dmitrymomot/webauth/cmd/authgate/cmd"

func main() {
	cmd.Execute()
}
