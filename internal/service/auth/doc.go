// Package auth obtains a Qobuz user token through the web player.
//
// A visible browser is driven with go-rod: the user logs in at
// play.qobuz.com and the token is read from the "localuser" entry
// the player keeps in local storage.
package auth
