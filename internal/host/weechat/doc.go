// Package weechat implements host.Host on top of WeeChat's relay "api"
// protocol (WeeChat 4.2 or newer, relay type "api").
//
// Enable it in WeeChat with:
//
//	/set relay.network.password "secret"
//	/relay add api 9000
//
// The relay password is sent as HTTP basic auth with user "plain".
package weechat
