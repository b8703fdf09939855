// Package cli provides the dnetmap command-line interface.
//
// # Overview
//
// dnetmap reads the protocol definition tree, keeps one response mapping
// document per protocol file and checks those documents against the tree.
//
// # Commands
//
// scan: List protocol files, their dialect and whether a mapping is stored
//
//	dnetmap scan -filter login
//
// show: Print a protocol file with its configured responses
//
//	dnetmap show -file login/account.dnet
//
// init: Write an empty template for a file to edit and import later
//
//	dnetmap init -file login/account.dnet -out account.yaml
//
// add, remove, move, group: Edit the responses of one client message
//
//	dnetmap add -file login/account.dnet -c2s ReqLogin -s2c RspLogin
//	dnetmap add -file login/account.dnet -c2s ReqLogin -s2c RspHeroes -group A
//	dnetmap add -file login/account.dnet -c2s ReqLogin -s2c RspBag -group A \
//		-conditional -condition "bag unlocked"
//	dnetmap move -file login/account.dnet -c2s ReqLogin -from 2 -to 0
//	dnetmap group -file login/account.dnet -c2s ReqLogin -name A -describe "any order"
//	dnetmap remove -file login/account.dnet -c2s ReqLogin -index 1
//
// trigger: Record custom triggers of server messages
//
//	dnetmap trigger -file login/account.dnet -s2c RspKick -name "gm kick" -conditional
//
// validate: Check one or every stored mapping
//
//	dnetmap validate
//	dnetmap validate -file login/account.dnet
//
// export, import: Copy a document out of or into the store
//
//	dnetmap export -file login/account.dnet -out /tmp/account.json
//	dnetmap import -in /tmp/account.json -file login/account.dnet -force
//
// watch: Rescan and validate whenever protocol files change
//
//	dnetmap watch
//
// config: Print the effective configuration
//
// # Configuration
//
// Every command that opens the workspace accepts -proto and -config to
// override the directories from pkg/config. Edits are refused when the
// result has validation warnings unless -force is given.
package cli
