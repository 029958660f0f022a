// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"fmt"
	"sort"
)

// Install warning identifiers, in display order.
const (
	MessageUnknown MessageID = iota
	MessageNone
	MessageBookmarks
	MessageGeolocation
	MessageBrowsingHistory
	MessageTabs
	MessageManagement
	MessageDebugger
	MessageHosts1
	MessageHosts2
	MessageHosts3
	MessageHosts4OrMore
	MessageHostsAll
	MessageFullAccess
	MessageClipboard
	MessageTTSEngine
	MessageContentSettings
	MessageAllPageContent
	MessagePrivacy
)

type (
	// MessageID identifies an install warning.
	MessageID int

	// Message is one install warning shown to the user.
	Message struct {
		ID   MessageID
		Text string
	}
)

var simpleMessageText = map[MessageID]string{
	MessageBookmarks:       "Your bookmarks",
	MessageGeolocation:     "Your physical location",
	MessageBrowsingHistory: "Your browsing history",
	MessageTabs:            "Your tabs and browsing activity",
	MessageManagement:      "Your list of apps, extensions, and themes",
	MessageDebugger:        "Access the page debugger backend",
	MessageHostsAll:        "Your data on all websites",
	MessageFullAccess:      "All data on your computer and the websites you visit",
	MessageClipboard:       "Data you copy and paste",
	MessageTTSEngine:       "Read all text spoken using synthesized speech",
	MessageContentSettings: "Manipulate settings that specify whether websites can use features such as cookies, JavaScript, and plug-ins",
	MessageAllPageContent:  "Read the content of every page you visit",
	MessagePrivacy:         "Manipulate privacy-related settings",
}

// HostListMessage builds the warning for a list of hosts. Hosts are shown in
// sorted order. The list must not be empty.
func HostListMessage(hosts []string) Message {
	sorted := append([]string(nil), hosts...)
	sort.Strings(sorted)

	switch len(sorted) {
	case 0:
		return Message{ID: MessageUnknown}
	case 1:
		return Message{ID: MessageHosts1, Text: fmt.Sprintf("Your data on %s", sorted[0])}
	case 2:
		return Message{ID: MessageHosts2, Text: fmt.Sprintf("Your data on %s and %s", sorted[0], sorted[1])}
	case 3:
		return Message{ID: MessageHosts3, Text: fmt.Sprintf("Your data on %s, %s, and %s", sorted[0], sorted[1], sorted[2])}
	default:
		return Message{
			ID:   MessageHosts4OrMore,
			Text: fmt.Sprintf("Your data on %s, %s, and %d other websites", sorted[0], sorted[1], len(sorted)-2),
		}
	}
}

// sortMessages orders by id, then text.
func sortMessages(msgs []Message) {
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].ID != msgs[j].ID {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].Text < msgs[j].Text
	})
}

// String returns the warning text.
func (m Message) String() string { return m.Text }
