package main

import (
	"fmt"
	"strings"
	"time"

	"mockircd.dev/server/internal/ircwire"
)

// commandSpec describes how the dispatcher should handle a command: whether
// registration is required first, and what to call.
type commandSpec struct {
	requiresRegistered bool
	handler            func(s *Server, c *Client, m ircwire.Message)
}

// commands is the static verb to handler table. Commands not listed here
// either are accepted-but-canned (see cannedReplies below) or are unknown
// and get 421 ERR_UNKNOWNCOMMAND.
var commands = map[string]commandSpec{
	"PASS": {false, func(s *Server, c *Client, m ircwire.Message) {}},
	"CAP": {false, func(s *Server, c *Client, m ircwire.Message) {
		// CAP LS gets an empty capability list; other subcommands are ignored.
		if len(m.Params) > 0 && strings.ToUpper(m.Params[0]) == "LS" {
			c.messageFromServer("CAP", []string{"*", "LS", ""})
		}
	}},
	"NICK": {false, (*Server).nickCommand},
	"USER": {false, (*Server).userCommand},
	"PING": {false, (*Server).pingCommand},
	"PONG": {false, (*Server).pongCommand},
	"QUIT": {false, (*Server).quitCommand},

	"JOIN":    {true, (*Server).joinCommand},
	"PART":    {true, (*Server).partCommand},
	"PRIVMSG": {true, (*Server).privmsgCommand},
	"NOTICE":  {true, (*Server).noticeCommand},
	"TOPIC":   {true, (*Server).topicCommand},
	"INVITE":  {true, (*Server).inviteCommand},
	"KICK":    {true, (*Server).kickCommand},
	"MODE":    {true, (*Server).modeCommand},
	"WHO":     {true, (*Server).whoCommand},
	"WHOIS":   {true, (*Server).whoisCommand},
	"WHOWAS":  {true, (*Server).whoWasCommand},
	"OPER":    {true, (*Server).operCommand},
	"LUSERS":  {true, func(s *Server, c *Client, m ircwire.Message) { c.lusersCommand() }},
	"MOTD":    {true, func(s *Server, c *Client, m ircwire.Message) { c.motdCommand() }},
	"AWAY":    {true, (*Server).awayCommand},
	"DIE":     {true, (*Server).dieCommand},
	"REHASH":  {true, (*Server).rehashCommand},
}

// cannedReplies lists RFC 2812 commands this server accepts syntactically
// but mostly does nothing with beyond a minimal, usually empty, reply; KILL
// (which disconnects its target) and WALLOPS (which relays to operators) are
// the exceptions. They exist so well-behaved clients that probe for them
// don't treat the server as broken.
var cannedReplies = map[string]func(s *Server, c *Client, m ircwire.Message){
	"VERSION": func(s *Server, c *Client, m ircwire.Message) {
		// 351 RPL_VERSION
		c.messageFromServer("351", []string{
			s.Config.Version, s.Config.ServerName, "",
		})
	},
	"TIME": func(s *Server, c *Client, m ircwire.Message) {
		// 391 RPL_TIME
		c.messageFromServer("391", []string{
			s.Config.ServerName, time.Now().Format(time.RFC1123),
		})
	},
	"ADMIN": func(s *Server, c *Client, m ircwire.Message) {
		// 256/257/259 RPL_ADMIN* (no 258 line is sent)
		c.messageFromServer("256", []string{s.Config.ServerName, "Administrative info"})
		c.messageFromServer("257", []string{s.Config.ServerInfo})
		c.messageFromServer("259", []string{"No administrator contact configured"})
	},
	"INFO": func(s *Server, c *Client, m ircwire.Message) {
		// 371 RPL_INFO / 374 RPL_ENDOFINFO
		c.messageFromServer("371", []string{s.Config.ServerInfo})
		c.messageFromServer("374", []string{"End of INFO list"})
	},
	"LINKS": func(s *Server, c *Client, m ircwire.Message) {
		// 364/365: a single-node server only ever lists itself.
		c.messageFromServer("364", []string{s.Config.ServerName, s.Config.ServerName,
			fmt.Sprintf("0 %s", s.Config.ServerInfo)})
		c.messageFromServer("365", []string{"*", "End of LINKS list"})
	},
	"STATS": func(s *Server, c *Client, m ircwire.Message) {
		letter := "?"
		if len(m.Params) > 0 {
			letter = m.Params[0]
		}
		// 219 RPL_ENDOFSTATS
		c.messageFromServer("219", []string{letter, "End of STATS report"})
	},
	"USERHOST": func(s *Server, c *Client, m ircwire.Message) {
		var replies []string
		for _, nick := range m.Params {
			id, exists := s.Nicks[canonicalizeNick(nick)]
			if !exists {
				continue
			}
			target := s.Clients[id]
			away := ""
			if target.AwayMessage != "" {
				away = "-"
			} else {
				away = "+"
			}
			replies = append(replies,
				fmt.Sprintf("%s=%s~%s@%s", target.DisplayNick, away, target.User, target.Conn.IP))
		}
		// 302 RPL_USERHOST
		c.messageFromServer("302", []string{strings.Join(replies, " ")})
	},
	"ISON": func(s *Server, c *Client, m ircwire.Message) {
		var present []string
		for _, nick := range m.Params {
			if _, exists := s.Nicks[canonicalizeNick(nick)]; exists {
				present = append(present, nick)
			}
		}
		// 303 RPL_ISON
		c.messageFromServer("303", []string{strings.Join(present, " ")})
	},
	"USERS": func(s *Server, c *Client, m ircwire.Message) {
		// 446 ERR_USERSDISABLED: we never enabled the USERS reply.
		c.messageFromServer("446", []string{"USERS has been disabled"})
	},
	"SUMMON": func(s *Server, c *Client, m ircwire.Message) {
		// 445 ERR_SUMMONDISABLED
		c.messageFromServer("445", []string{"SUMMON has been disabled"})
	},
	"SERVLIST": func(s *Server, c *Client, m ircwire.Message) {
		// 235 RPL_SERVLISTEND (no services on this server, so no 234 lines)
		c.messageFromServer("235", []string{"*", "*", "End of service listing"})
	},
	"SQUERY": func(s *Server, c *Client, m ircwire.Message) {
		if len(m.Params) > 0 {
			// 401 ERR_NOSUCHNICK: no services exist to query.
			c.messageFromServer("401", []string{m.Params[0], "No such nick/channel"})
		}
	},
	"WALLOPS": func(s *Server, c *Client, m ircwire.Message) {
		if !c.isOperator() {
			// 481 ERR_NOPRIVILEGES
			c.messageFromServer("481", []string{"Permission Denied- You're not an IRC operator"})
			return
		}
		for _, oper := range s.operatorClients() {
			if oper.ID == c.ID {
				continue
			}
			c.messageClient(oper, "WALLOPS", m.Params)
		}
	},
	"CONNECT": func(s *Server, c *Client, m ircwire.Message) {
		if !c.isOperator() {
			c.messageFromServer("481", []string{"Permission Denied- You're not an IRC operator"})
			return
		}
		// 200 RPL_TRACELINK-ish acknowledgement: this server only ever has
		// itself to connect to. There is nothing for CONNECT to do.
		c.messageFromServer("NOTICE", []string{"This server does not link to other servers"})
	},
	"SQUIT": func(s *Server, c *Client, m ircwire.Message) {
		if !c.isOperator() {
			c.messageFromServer("481", []string{"Permission Denied- You're not an IRC operator"})
			return
		}
		c.messageFromServer("NOTICE", []string{"This server does not link to other servers"})
	},
	"KILL": func(s *Server, c *Client, m ircwire.Message) {
		if !c.isOperator() {
			c.messageFromServer("481", []string{"Permission Denied- You're not an IRC operator"})
			return
		}
		if len(m.Params) == 0 {
			c.messageFromServer("461", []string{"KILL", "Not enough parameters"})
			return
		}
		id, exists := s.Nicks[canonicalizeNick(m.Params[0])]
		if !exists {
			c.messageFromServer("401", []string{m.Params[0], "No such nick/channel"})
			return
		}
		reason := "Killed"
		if len(m.Params) > 1 {
			reason = "Killed: " + m.Params[1]
		}
		s.Clients[id].quit(reason)
	},
	"RESTART": func(s *Server, c *Client, m ircwire.Message) {
		if !c.isOperator() {
			c.messageFromServer("481", []string{"Permission Denied- You're not an IRC operator"})
		}
		// For an operator RESTART is accepted and does nothing.
	},
	"SERVICE": func(s *Server, c *Client, m ircwire.Message) {
		// 383 RPL_YOURESERVICE never applies; services can't register here.
		c.messageFromServer("ERROR", []string{"Services are not supported"})
	},
	"ERROR": func(s *Server, c *Client, m ircwire.Message) {
		// Clients aren't expected to send this. Ignore it silently.
	},
}

func (s *Server) operatorClients() []*Client {
	var opers []*Client
	for id := range s.Opers {
		opers = append(opers, s.Clients[id])
	}
	return opers
}

// dispatch routes a single message from a client to the right handler.
func (s *Server) dispatch(c *Client, m ircwire.Message) {
	if m.Prefix != "" {
		c.messageFromServer("ERROR", []string{"Do not send a prefix"})
		return
	}

	command := strings.ToUpper(m.Command)

	if spec, exists := commands[command]; exists {
		if spec.requiresRegistered && !c.Registered {
			// 451 ERR_NOTREGISTERED
			c.messageFromServer("451", []string{"You have not registered"})
			return
		}
		spec.handler(s, c, m)
		return
	}

	if handler, exists := cannedReplies[command]; exists {
		if !c.Registered {
			c.messageFromServer("451", []string{"You have not registered"})
			return
		}
		handler(s, c, m)
		return
	}

	// 421 ERR_UNKNOWNCOMMAND
	c.messageFromServer("421", []string{m.Command, "Unknown command"})
}

func (s *Server) nickCommand(c *Client, m ircwire.Message) {
	if len(m.Params) == 0 {
		// 431 ERR_NONICKNAMEGIVEN
		c.messageFromServer("431", []string{"No nickname given"})
		return
	}

	nick := m.Params[0]
	if len(nick) > s.Config.MaxNickLength {
		nick = nick[:s.Config.MaxNickLength]
	}

	if !isValidNick(s.Config.MaxNickLength, nick) {
		// 432 ERR_ERRONEUSNICKNAME
		c.messageFromServer("432", []string{nick, "Erroneous nickname"})
		return
	}

	nickCanon := canonicalizeNick(nick)
	if existingID, exists := s.Nicks[nickCanon]; exists && existingID != c.ID {
		// 433 ERR_NICKNAMEINUSE
		c.messageFromServer("433", []string{nick, "Nickname is already in use"})
		return
	}

	oldDisplayNick := c.DisplayNick
	if oldDisplayNick != "" {
		delete(s.Nicks, canonicalizeNick(oldDisplayNick))
	}
	s.Nicks[nickCanon] = c.ID

	if c.Registered {
		s.WhoWas.Record(oldDisplayNick, c.User, fmt.Sprintf("%s", c.Conn.IP), c.RealName)

		informedClients := map[uint64]struct{}{}
		for _, ch := range c.Channels {
			for _, member := range ch.Members {
				if _, told := informedClients[member.ID]; told {
					continue
				}
				c.messageClient(member, "NICK", []string{nick})
				informedClients[member.ID] = struct{}{}
			}
		}
		if _, told := informedClients[c.ID]; !told {
			c.messageClient(c, "NICK", []string{nick})
		}
	}

	c.DisplayNick = nick

	if !c.Registered && c.User != "" {
		c.completeRegistration()
	}
}

func (s *Server) userCommand(c *Client, m ircwire.Message) {
	if c.Registered {
		// 462 ERR_ALREADYREGISTRED
		c.messageFromServer("462", []string{"Unauthorized command (already registered)"})
		return
	}

	if len(m.Params) != 4 {
		// 461 ERR_NEEDMOREPARAMS
		c.messageFromServer("461", []string{"USER", "Not enough parameters"})
		return
	}

	user := m.Params[0]
	if !isValidUser(s.Config.MaxNickLength, user) {
		c.messageFromServer("ERROR", []string{"Invalid username"})
		return
	}

	c.User = user
	c.RealName = m.Params[3]

	if c.DisplayNick != "" {
		c.completeRegistration()
	}
}

// pingCommand answers a client-initiated liveness PING. The argument is an
// opaque token the client chose; we don't require it to match anything in
// particular, we just echo it back in the PONG.
func (s *Server) pingCommand(c *Client, m ircwire.Message) {
	if len(m.Params) == 0 {
		// 409 ERR_NOORIGIN
		c.messageFromServer("409", []string{"No origin specified"})
		return
	}

	c.messageFromServer("PONG", []string{s.Config.ServerName, m.Params[0]})
}

// pongCommand answers a PONG sent in reply to our own liveness PING. It only
// clears AwaitingPong if the token matches the one we sent; a PONG for some
// earlier, already-timed-out PING is ignored.
func (s *Server) pongCommand(c *Client, m ircwire.Message) {
	if !c.AwaitingPong {
		return
	}

	var token string
	if len(m.Params) > 0 {
		token = m.Params[len(m.Params)-1]
	}

	if token != c.PingToken {
		return
	}

	c.AwaitingPong = false
	c.PingToken = ""
}

func (s *Server) quitCommand(c *Client, m ircwire.Message) {
	msg := "Quit:"
	if len(m.Params) > 0 {
		msg += " " + m.Params[0]
	}
	c.quit(msg)
}

func (s *Server) joinCommand(c *Client, m ircwire.Message) {
	if len(m.Params) == 0 {
		// 461 ERR_NEEDMOREPARAMS
		c.messageFromServer("461", []string{"JOIN", "Not enough parameters"})
		return
	}

	// JOIN 0 is a special case: leave every channel.
	if len(m.Params) == 1 && m.Params[0] == "0" {
		for _, ch := range c.Channels {
			c.part(ch.Name, "")
		}
		return
	}

	// NOTE: deviation from RFC 2812: we don't support joining multiple
	// comma-separated channels in a single command.
	channelName := canonicalizeChannel(m.Params[0])
	if !isValidChannel(channelName) {
		// 403 ERR_NOSUCHCHANNEL
		c.messageFromServer("403", []string{channelName, "Invalid channel name"})
		return
	}

	channel, exists := s.Channels[channelName]
	if exists && c.onChannel(channel) {
		return
	}

	if exists && channel.InviteOnly {
		if _, invited := channel.Invited[canonicalizeNick(c.DisplayNick)]; !invited {
			// 473 ERR_INVITEONLYCHAN
			c.messageFromServer("473", []string{channel.Name, "Cannot join channel (+i)"})
			return
		}
	}

	if !exists {
		channel = NewChannel(channelName)
		s.Channels[channelName] = channel
	}

	channel.addMember(c)
	c.Channels[channelName] = channel

	c.messageClient(c, "JOIN", []string{channel.Name})

	// 353 RPL_NAMREPLY / 366 RPL_ENDOFNAMES
	var names []string
	for _, member := range channel.Members {
		prefix := ""
		if channel.isOperator(member.ID) {
			prefix = "@"
		}
		names = append(names, prefix+member.DisplayNick)
	}
	c.messageFromServer("353", []string{"=", channel.Name, strings.Join(names, " ")})
	c.messageFromServer("366", []string{channel.Name, "End of NAMES list"})

	if channel.Topic != "" {
		// 332 RPL_TOPIC
		c.messageFromServer("332", []string{channel.Name, channel.Topic})
	} else {
		// 331 RPL_NOTOPIC
		c.messageFromServer("331", []string{channel.Name, "No topic is set"})
	}

	for _, member := range channel.Members {
		if member.ID == c.ID {
			continue
		}
		c.messageClient(member, "JOIN", []string{channel.Name})
	}
}

func (s *Server) partCommand(c *Client, m ircwire.Message) {
	if len(m.Params) == 0 {
		// 461 ERR_NEEDMOREPARAMS
		c.messageFromServer("461", []string{"PART", "Not enough parameters"})
		return
	}

	partMessage := ""
	if len(m.Params) >= 2 {
		partMessage = m.Params[1]
	}

	c.part(m.Params[0], partMessage)
}

// part tries to remove the client from the named channel, informing the
// rest of the channel first.
func (c *Client) part(channelName, message string) {
	channelName = canonicalizeChannel(channelName)

	if !isValidChannel(channelName) {
		c.Server.messageClientErr(c, "403", channelName, "Invalid channel name")
		return
	}

	channel, exists := c.Server.Channels[channelName]
	if !exists {
		c.Server.messageClientErr(c, "403", channelName, "No such channel")
		return
	}

	if !c.onChannel(channel) {
		// 442 ERR_NOTONCHANNEL
		c.Server.messageClientErr(c, "442", channelName, "You're not on that channel")
		return
	}

	for _, member := range channel.Members {
		params := []string{channelName}
		if message != "" {
			params = append(params, message)
		}
		c.messageClient(member, "PART", params)
	}

	delete(c.Channels, channel.Name)
	if empty := channel.removeMember(c.ID); empty {
		delete(c.Server.Channels, channel.Name)
	}
}

func (s *Server) messageClientErr(c *Client, code, target, msg string) {
	c.messageFromServer(code, []string{target, msg})
}

func (s *Server) privmsgCommand(c *Client, m ircwire.Message) {
	s.sendToTarget(c, m, "PRIVMSG")
}

func (s *Server) noticeCommand(c *Client, m ircwire.Message) {
	// RFC 2812: servers must never reply to a NOTICE, even with an error.
	if len(m.Params) < 2 {
		return
	}
	s.sendToTarget(c, m, "NOTICE")
}

func (s *Server) sendToTarget(c *Client, m ircwire.Message, command string) {
	noReply := command == "NOTICE"

	if len(m.Params) == 0 {
		if !noReply {
			// 411 ERR_NORECIPIENT
			c.messageFromServer("411", []string{fmt.Sprintf("No recipient given (%s)", command)})
		}
		return
	}
	if len(m.Params) == 1 {
		if !noReply {
			// 412 ERR_NOTEXTTOSEND
			c.messageFromServer("412", []string{"No text to send"})
		}
		return
	}

	target := m.Params[0]
	msg := m.Params[1]

	if target[0] == '#' {
		channelName := canonicalizeChannel(target)
		channel, exists := s.Channels[channelName]
		if !exists || !isValidChannel(channelName) {
			if !noReply {
				// 403 ERR_NOSUCHCHANNEL
				c.messageFromServer("403", []string{target, "No such channel"})
			}
			return
		}

		if !c.onChannel(channel) {
			if !noReply {
				// 404 ERR_CANNOTSENDTOCHAN
				c.messageFromServer("404", []string{channel.Name, "Cannot send to channel"})
			}
			return
		}

		for _, member := range channel.Members {
			if member.ID == c.ID {
				continue
			}
			c.messageClient(member, command, []string{channel.Name, msg})
		}
		return
	}

	nickCanon := canonicalizeNick(target)
	targetID, exists := s.Nicks[nickCanon]
	if !exists {
		if !noReply {
			// 401 ERR_NOSUCHNICK
			c.messageFromServer("401", []string{target, "No such nick/channel"})
		}
		return
	}

	targetClient := s.Clients[targetID]
	c.messageClient(targetClient, command, []string{targetClient.DisplayNick, msg})

	if !noReply && targetClient.AwayMessage != "" {
		// 301 RPL_AWAY
		c.messageFromServer("301", []string{targetClient.DisplayNick, targetClient.AwayMessage})
	}
}

func (s *Server) topicCommand(c *Client, m ircwire.Message) {
	if len(m.Params) == 0 {
		c.messageFromServer("461", []string{"TOPIC", "Not enough parameters"})
		return
	}

	channelName := canonicalizeChannel(m.Params[0])
	channel, exists := s.Channels[channelName]
	if !exists {
		c.messageFromServer("403", []string{m.Params[0], "Invalid channel name"})
		return
	}

	if !c.onChannel(channel) {
		// 442 ERR_NOTONCHANNEL
		c.messageFromServer("442", []string{channel.Name, "You're not on that channel"})
		return
	}

	if len(m.Params) < 2 {
		if channel.Topic == "" {
			// 331 RPL_NOTOPIC
			c.messageFromServer("331", []string{channel.Name, "No topic is set"})
			return
		}
		// 332 RPL_TOPIC
		c.messageFromServer("332", []string{channel.Name, channel.Topic})
		return
	}

	if channel.TopicLocked && !channel.isOperator(c.ID) {
		// 482 ERR_CHANOPRIVSNEEDED
		c.messageFromServer("482", []string{channel.Name, "You're not channel operator"})
		return
	}

	topic := m.Params[1]
	if len(topic) > maxTopicLength {
		topic = topic[:maxTopicLength]
	}

	channel.Topic = topic
	channel.TopicSetBy = c.nickUhost()
	channel.TopicSetAt = time.Now()

	for _, member := range channel.Members {
		c.messageClient(member, "TOPIC", []string{channel.Name, topic})
	}

	if topic == "" {
		// 331 RPL_NOTOPIC
		c.messageFromServer("331", []string{channel.Name, "No topic is set"})
		return
	}
	// 332 RPL_TOPIC
	c.messageFromServer("332", []string{channel.Name, topic})
}

func (s *Server) inviteCommand(c *Client, m ircwire.Message) {
	if len(m.Params) < 2 {
		c.messageFromServer("461", []string{"INVITE", "Not enough parameters"})
		return
	}

	nick := m.Params[0]
	channelName := canonicalizeChannel(m.Params[1])

	channel, exists := s.Channels[channelName]
	if !exists {
		c.messageFromServer("403", []string{m.Params[1], "No such channel"})
		return
	}

	if !c.onChannel(channel) {
		c.messageFromServer("442", []string{channel.Name, "You're not on that channel"})
		return
	}

	if channel.InviteOnly && !channel.isOperator(c.ID) {
		c.messageFromServer("482", []string{channel.Name, "You're not channel operator"})
		return
	}

	targetID, exists := s.Nicks[canonicalizeNick(nick)]
	if !exists {
		// 401 ERR_NOSUCHNICK
		c.messageFromServer("401", []string{nick, "No such nick/channel"})
		return
	}
	target := s.Clients[targetID]

	if target.onChannel(channel) {
		// 443 ERR_USERONCHANNEL
		c.messageFromServer("443", []string{target.DisplayNick, channel.Name, "is already on channel"})
		return
	}

	channel.Invited[canonicalizeNick(target.DisplayNick)] = struct{}{}

	// 341 RPL_INVITING
	c.messageFromServer("341", []string{target.DisplayNick, channel.Name})
	c.messageClient(target, "INVITE", []string{target.DisplayNick, channel.Name})
}

func (s *Server) kickCommand(c *Client, m ircwire.Message) {
	if len(m.Params) < 2 {
		c.messageFromServer("461", []string{"KICK", "Not enough parameters"})
		return
	}

	channelName := canonicalizeChannel(m.Params[0])
	channel, exists := s.Channels[channelName]
	if !exists {
		c.messageFromServer("403", []string{m.Params[0], "No such channel"})
		return
	}

	if !c.onChannel(channel) {
		c.messageFromServer("442", []string{channel.Name, "You're not on that channel"})
		return
	}

	if !channel.isOperator(c.ID) {
		c.messageFromServer("482", []string{channel.Name, "You're not channel operator"})
		return
	}

	targetID, exists := s.Nicks[canonicalizeNick(m.Params[1])]
	if !exists {
		c.messageFromServer("401", []string{m.Params[1], "No such nick/channel"})
		return
	}
	target := s.Clients[targetID]

	if !target.onChannel(channel) {
		// 441 ERR_USERNOTINCHANNEL
		c.messageFromServer("441", []string{target.DisplayNick, channel.Name, "They aren't on that channel"})
		return
	}

	reason := target.DisplayNick
	if len(m.Params) > 2 {
		reason = m.Params[2]
	}

	for _, member := range channel.Members {
		c.messageClient(member, "KICK", []string{channel.Name, target.DisplayNick, reason})
	}

	delete(target.Channels, channel.Name)
	if empty := channel.removeMember(target.ID); empty {
		delete(s.Channels, channel.Name)
	}
}

func (s *Server) whoisCommand(c *Client, m ircwire.Message) {
	if len(m.Params) == 0 {
		c.messageFromServer("431", []string{"No nickname given"})
		return
	}

	nick := m.Params[0]
	targetID, exists := s.Nicks[canonicalizeNick(nick)]
	if !exists {
		c.messageFromServer("401", []string{nick, "No such nick/channel"})
		return
	}
	target := s.Clients[targetID]

	// 311 RPL_WHOISUSER
	c.messageFromServer("311", []string{
		target.DisplayNick, target.User, fmt.Sprintf("%s", target.Conn.IP), "*", target.RealName,
	})

	// 312 RPL_WHOISSERVER
	c.messageFromServer("312", []string{
		target.DisplayNick, s.Config.ServerName, s.Config.ServerInfo,
	})

	if target.AwayMessage != "" {
		// 301 RPL_AWAY
		c.messageFromServer("301", []string{target.DisplayNick, target.AwayMessage})
	}

	if target.isOperator() {
		// 313 RPL_WHOISOPERATOR
		c.messageFromServer("313", []string{target.DisplayNick, "is an IRC operator"})
	}

	idleSeconds := int(time.Since(target.LastActivityTime).Seconds())
	// 317 RPL_WHOISIDLE
	c.messageFromServer("317", []string{
		target.DisplayNick, fmt.Sprintf("%d", idleSeconds), fmt.Sprintf("%d", target.ConnectedAt.Unix()), "seconds idle, signon time",
	})

	// 318 RPL_ENDOFWHOIS
	c.messageFromServer("318", []string{target.DisplayNick, "End of WHOIS list"})
}

func (s *Server) whoWasCommand(c *Client, m ircwire.Message) {
	if len(m.Params) == 0 {
		c.messageFromServer("431", []string{"No nickname given"})
		return
	}

	nick := m.Params[0]
	entries := s.WhoWas.Lookup(canonicalizeNick(nick))
	if len(entries) == 0 {
		// 406 ERR_WASNOSUCHNICK
		c.messageFromServer("406", []string{nick, "There was no such nickname"})
		c.messageFromServer("369", []string{nick, "End of WHOWAS"})
		return
	}

	for _, entry := range entries {
		// 314 RPL_WHOWASUSER
		c.messageFromServer("314", []string{entry.Nick, entry.User, entry.Host, "*", entry.RealName})
	}
	// 369 RPL_ENDOFWHOWAS
	c.messageFromServer("369", []string{nick, "End of WHOWAS"})
}

func (s *Server) operCommand(c *Client, m ircwire.Message) {
	if len(m.Params) < 2 {
		c.messageFromServer("461", []string{"OPER", "Not enough parameters"})
		return
	}

	if c.isOperator() {
		// 381 RPL_YOUREOPER
		c.messageFromServer("381", []string{"You are already an IRC operator"})
		return
	}

	pass, exists := s.Config.Opers[m.Params[0]]
	if !exists || pass != m.Params[1] {
		// 464 ERR_PASSWDMISMATCH
		c.messageFromServer("464", []string{"Password incorrect"})
		return
	}

	c.Modes['o'] = struct{}{}
	s.Opers[c.ID] = struct{}{}

	c.messageClient(c, "MODE", []string{c.DisplayNick, "+o"})

	// 381 RPL_YOUREOPER
	c.messageFromServer("381", []string{"You are now an IRC operator"})
}

// MODE applies either to nicknames or to channels.
func (s *Server) modeCommand(c *Client, m ircwire.Message) {
	if len(m.Params) < 1 {
		c.messageFromServer("461", []string{"MODE", "Not enough parameters"})
		return
	}

	target := m.Params[0]

	modes := ""
	if len(m.Params) > 1 {
		modes = m.Params[1]
	}

	if targetID, exists := s.Nicks[canonicalizeNick(target)]; exists {
		s.userModeCommand(c, s.Clients[targetID], modes)
		return
	}

	if channel, exists := s.Channels[canonicalizeChannel(target)]; exists {
		var modeParams []string
		if len(m.Params) > 2 {
			modeParams = m.Params[2:]
		}
		s.channelModeCommand(c, channel, modes, modeParams)
		return
	}

	// 403 ERR_NOSUCHCHANNEL: closest applicable error for an unknown target.
	c.messageFromServer("403", []string{target, "No such channel"})
}

func (s *Server) userModeCommand(c *Client, target *Client, modes string) {
	if target.ID != c.ID {
		// 502 ERR_USERSDONTMATCH
		c.messageFromServer("502", []string{"Cannot change mode for other users"})
		return
	}

	if modes == "" {
		modeReturn := "+"
		for k := range c.Modes {
			modeReturn += string(k)
		}
		// 221 RPL_UMODEIS
		c.messageFromServer("221", []string{modeReturn})
		return
	}

	action := byte(0)
	for i := 0; i < len(modes); i++ {
		ch := modes[i]

		if ch == '+' || ch == '-' {
			action = ch
			continue
		}

		if action == 0 {
			// 472 ERR_UNKNOWNMODE
			c.messageFromServer("472", []string{string(modes[i]), "is unknown mode to me"})
			continue
		}

		// 'w' and 's' are accepted but not tracked: we never suppress
		// anything based on them. 'i' (invisible) is tracked since it gates
		// WHO visibility.
		if ch == 'w' || ch == 's' {
			continue
		}

		if ch == 'i' {
			if action == '+' {
				c.Modes['i'] = struct{}{}
			} else {
				delete(c.Modes, 'i')
			}
			continue
		}

		if ch != 'o' {
			// 501 ERR_UMODEUNKNOWNFLAG
			c.messageFromServer("501", []string{"Unknown MODE flag"})
			continue
		}

		// Clients cannot OPER themselves via MODE; RFC says to silently
		// ignore +o here.
		if action == '+' {
			continue
		}

		if !c.isOperator() {
			continue
		}

		delete(c.Modes, 'o')
		delete(s.Opers, c.ID)
		c.messageClient(c, "MODE", []string{c.DisplayNick, "-o"})
	}
}

func (s *Server) channelModeCommand(c *Client, channel *Channel, modes string, params []string) {
	if !c.onChannel(channel) {
		c.messageFromServer("442", []string{channel.Name, "You're not on that channel"})
		return
	}

	if modes == "" {
		modeStr := "+n"
		if channel.InviteOnly {
			modeStr += "i"
		}
		if channel.TopicLocked {
			modeStr += "t"
		}
		// 324 RPL_CHANNELMODEIS
		c.messageFromServer("324", []string{channel.Name, modeStr})
		return
	}

	if modes == "b" || modes == "+b" {
		// No ban list is maintained; report it empty.
		// 368 RPL_ENDOFBANLIST
		c.messageFromServer("368", []string{channel.Name, "End of channel ban list"})
		return
	}

	if !channel.isOperator(c.ID) {
		// 482 ERR_CHANOPRIVSNEEDED
		c.messageFromServer("482", []string{channel.Name, "You're not channel operator"})
		return
	}

	action := byte(0)
	paramIdx := 0
	var applied strings.Builder

	nextParam := func() (string, bool) {
		if paramIdx >= len(params) {
			return "", false
		}
		p := params[paramIdx]
		paramIdx++
		return p, true
	}

	for i := 0; i < len(modes); i++ {
		ch := modes[i]

		if ch == '+' || ch == '-' {
			action = ch
			applied.WriteByte(ch)
			continue
		}

		switch ch {
		case 'i':
			channel.InviteOnly = action == '+'
			applied.WriteByte(ch)
		case 't':
			channel.TopicLocked = action == '+'
			applied.WriteByte(ch)
		case 'n':
			// +n (no external messages) is always on; +n and -n are accepted
			// and change nothing.
		case 'o':
			nick, ok := nextParam()
			if !ok {
				continue
			}
			targetID, exists := s.Nicks[canonicalizeNick(nick)]
			if !exists || !s.Clients[targetID].onChannel(channel) {
				continue
			}
			if action == '+' {
				channel.Operators[targetID] = struct{}{}
			} else {
				delete(channel.Operators, targetID)
			}
			applied.WriteByte(ch)
		default:
			// 472 ERR_UNKNOWNMODE
			c.messageFromServer("472", []string{string(ch), "is unknown mode to me"})
		}
	}

	if applied.Len() == 0 {
		return
	}

	appliedParams := append([]string{channel.Name, applied.String()}, params[:paramIdx]...)
	for _, member := range channel.Members {
		c.messageClient(member, "MODE", appliedParams)
	}
}

// isInvisible reports whether the client has user mode +i set.
func (c *Client) isInvisible() bool {
	_, exists := c.Modes['i']
	return exists
}

// sharesChannelWith reports whether a and b are both on some common channel.
func (a *Client) sharesChannelWith(b *Client) bool {
	for name := range a.Channels {
		if _, onChannel := b.Channels[name]; onChannel {
			return true
		}
	}
	return false
}

// visibleTo reports whether target should appear in requester's WHO output:
// everyone is visible except an invisible (+i) client who shares no channel
// with the requester.
func (target *Client) visibleTo(requester *Client) bool {
	if target.ID == requester.ID || !target.isInvisible() {
		return true
	}
	return target.sharesChannelWith(requester)
}

func (s *Server) whoReply(c *Client, channelName string, member *Client) {
	flags := "H"
	if member.AwayMessage != "" {
		flags = "G"
	}
	if member.isOperator() {
		flags += "*"
	}
	if channel, exists := s.Channels[canonicalizeChannel(channelName)]; exists && channel.isOperator(member.ID) {
		flags += "@"
	}

	// 352 RPL_WHOREPLY
	c.messageFromServer("352", []string{
		channelName, member.User, fmt.Sprintf("%s", member.Conn.IP),
		s.Config.ServerName, member.DisplayNick, flags, "0 " + member.RealName,
	})
}

func (s *Server) whoCommand(c *Client, m ircwire.Message) {
	if len(m.Params) == 0 {
		// Global WHO: every registered, visible client.
		for _, member := range s.Clients {
			if !member.Registered || !member.visibleTo(c) {
				continue
			}
			s.whoReply(c, "*", member)
		}
		// 315 RPL_ENDOFWHO
		c.messageFromServer("315", []string{"*", "End of WHO list"})
		return
	}

	channel, exists := s.Channels[canonicalizeChannel(m.Params[0])]
	if !exists {
		c.messageFromServer("403", []string{m.Params[0], "Invalid channel name"})
		return
	}

	for _, member := range channel.Members {
		if !member.visibleTo(c) {
			continue
		}
		s.whoReply(c, channel.Name, member)
	}

	// 315 RPL_ENDOFWHO
	c.messageFromServer("315", []string{channel.Name, "End of WHO list"})
}

func (c *Client) lusersCommand() {
	s := c.Server

	// 251 RPL_LUSERCLIENT
	c.messageFromServer("251", []string{
		fmt.Sprintf("There are %d users and 0 services on 1 server.", len(s.Nicks)),
	})

	if len(s.Opers) > 0 {
		// 252 RPL_LUSEROP
		c.messageFromServer("252", []string{fmt.Sprintf("%d", len(s.Opers)), "operator(s) online"})
	}

	numUnknown := len(s.Clients) - len(s.Nicks)
	if numUnknown > 0 {
		// 253 RPL_LUSERUNKNOWN
		c.messageFromServer("253", []string{fmt.Sprintf("%d", numUnknown), "unknown connection(s)"})
	}

	if len(s.Channels) > 0 {
		// 254 RPL_LUSERCHANNELS
		c.messageFromServer("254", []string{fmt.Sprintf("%d", len(s.Channels)), "channels formed"})
	}

	// 255 RPL_LUSERME
	c.messageFromServer("255", []string{
		fmt.Sprintf("I have %d clients and 1 server", len(s.Clients)),
	})
}

func (c *Client) motdCommand() {
	s := c.Server

	if s.Config.MOTD == "" {
		// 422 ERR_NOMOTD
		c.messageFromServer("422", []string{"MOTD File is missing"})
		return
	}

	// 375 RPL_MOTDSTART
	c.messageFromServer("375", []string{fmt.Sprintf("- %s Message of the day - ", s.Config.ServerName)})

	for _, line := range strings.Split(s.Config.MOTD, "\n") {
		// 372 RPL_MOTD
		c.messageFromServer("372", []string{"- " + line})
	}

	// 376 RPL_ENDOFMOTD
	c.messageFromServer("376", []string{"End of MOTD command"})
}

func (s *Server) awayCommand(c *Client, m ircwire.Message) {
	if len(m.Params) == 0 || m.Params[0] == "" {
		c.AwayMessage = ""
		// 305 RPL_UNAWAY
		c.messageFromServer("305", []string{"You are no longer marked as being away"})
		return
	}

	c.AwayMessage = m.Params[0]
	// 306 RPL_NOWAWAY
	c.messageFromServer("306", []string{"You have been marked as being away"})
}

func (s *Server) dieCommand(c *Client, m ircwire.Message) {
	if !c.isOperator() {
		c.messageFromServer("481", []string{"Permission Denied- You're not an IRC operator"})
		return
	}
	s.shutdown()
}

func (s *Server) rehashCommand(c *Client, m ircwire.Message) {
	if !c.isOperator() {
		c.messageFromServer("481", []string{"Permission Denied- You're not an IRC operator"})
		return
	}
	// 382 RPL_REHASHING
	c.messageFromServer("382", []string{s.ConfigPath, "Rehashing"})
	s.newEvent(Event{Type: RehashEvent})
}
